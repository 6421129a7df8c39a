package analytics

// WorkflowDataCollector receives one record per action outcome. The engine
// reports both successes and failures; collectors must not block.
type WorkflowDataCollector interface {
	RecordActionSuccess(wfName string, executionId string, actionName string, data map[string]any)
	RecordActionFailure(wfName string, executionId string, actionName string, reason string)
}

type NoopCollector struct{}

var _ WorkflowDataCollector = new(NoopCollector)

func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

func (c *NoopCollector) RecordActionSuccess(wfName string, executionId string, actionName string, data map[string]any) {
}

func (c *NoopCollector) RecordActionFailure(wfName string, executionId string, actionName string, reason string) {
}
