package config

type WorkerKeyStruct struct {
	PersistHistoryQueue string
	PersistProctorQueue string
	CompletedExchange   string
}

var WorkerKey = &WorkerKeyStruct{
	PersistHistoryQueue: "persist_history_queue",
	PersistProctorQueue: "persist_proctor_queue",
	CompletedExchange:   "assessment.completed",
}
