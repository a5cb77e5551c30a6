package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. Used by the main application and the API server to manage
// search checks without depending on the scheduler implementation.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	TriggerSearch(searchName string) error
}
