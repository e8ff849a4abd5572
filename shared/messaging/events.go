package messaging

import (
	"fmt"
	"time"

	"github.com/kacperborowieckb/schema-wizard/shared/contracts"
)

const (
	SchemaGenerationQueue = "schema_generation_queue"
)

type Stage string

const (
	StageQuestions Stage = "questions"
	StagePlan      Stage = "plan"
	StageSchema    Stage = "schema"
	StageCode      Stage = "code"
)

// StageEvent is published after a wizard stage committed its result.
type StageEvent struct {
	SessionID  string    `json:"sessionId"`
	Stage      Stage     `json:"stage"`
	Model      string    `json:"model,omitempty"`
	Tables     []string  `json:"tables,omitempty"`
	Language   string    `json:"language,omitempty"`
	Framework  string    `json:"framework,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (e StageEvent) RoutingKey() (string, error) {
	switch e.Stage {
	case StageQuestions:
		return contracts.QuestionsReadyRoutingKey, nil
	case StagePlan:
		return contracts.PlanReadyRoutingKey, nil
	case StageSchema:
		return contracts.SchemaReadyRoutingKey, nil
	case StageCode:
		return contracts.CodeReadyRoutingKey, nil
	default:
		return "", fmt.Errorf("unknown stage %q", e.Stage)
	}
}
