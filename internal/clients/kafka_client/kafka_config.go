package kafka_client

type KafkaConfig struct {
	Broker  string
	GroupID string
	Topic   string
}

func NewKafkaConfig(broker, groupID string) KafkaConfig {
	return KafkaConfig{
		Broker:  broker,
		GroupID: groupID,
		Topic:   KAFKA_TOPIC_ANALYSIS_REQUEST,
	}
}
