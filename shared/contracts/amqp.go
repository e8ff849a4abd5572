package contracts

type AmqpMessage struct {
	OwnerId string `json:"ownerId"`
	Data    []byte `json:"data"`
}

const (
	QuestionsReadyRoutingKey = "session.questions_ready"
	PlanReadyRoutingKey      = "session.plan_ready"
	SchemaReadyRoutingKey    = "session.schema_ready"
	CodeReadyRoutingKey      = "session.code_ready"
)
