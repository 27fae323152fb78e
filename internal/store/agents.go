package store

import (
	"context"

	"github.com/alextreichler/orderdesk/internal/models"
	"gorm.io/gorm/clause"
)

func (s *Store) GetAllAgents(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	err := s.db(ctx).Order("agent_id").Find(&agents).Error
	return agents, err
}

func (s *Store) GetAgentByID(ctx context.Context, id int) (*models.Agent, error) {
	var agent models.Agent
	if err := s.db(ctx).First(&agent, "agent_id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &agent, nil
}

func (s *Store) CreateAgent(ctx context.Context, agent *models.Agent) error {
	return classify(s.db(ctx).Create(agent).Error)
}

func (s *Store) UpdateAgent(ctx context.Context, agent *models.Agent) error {
	res := s.db(ctx).Model(agent).Omit(clause.Associations).Select("agent_name").Updates(agent)
	return s.checkUpdated(ctx, res, &models.Agent{}, "agent_id", agent.AgentID)
}

// DeleteAgent is a no-op for unknown ids. Agents with orders are refused by the
// foreign key and reported as ErrInvalidReference.
func (s *Store) DeleteAgent(ctx context.Context, id int) error {
	return classify(s.db(ctx).Delete(&models.Agent{}, "agent_id = ?", id).Error)
}
