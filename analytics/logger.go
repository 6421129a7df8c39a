package analytics

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogFileDataCollector struct {
	fileName string
	logger   *zap.Logger
}

var _ WorkflowDataCollector = new(LogFileDataCollector)

func NewLogFileDataCollector(fileName string) (*LogFileDataCollector, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	writer := zapcore.AddSync(logFile)
	core := zapcore.NewCore(fileEncoder, writer, zapcore.InfoLevel)
	return &LogFileDataCollector{
		fileName: fileName,
		logger:   zap.New(core),
	}, nil
}

func (lc *LogFileDataCollector) RecordActionSuccess(wfName string, executionId string, actionName string, data map[string]any) {
	lc.logger.Info("success", zap.String("workflow", wfName), zap.String("executionId", executionId), zap.String("action", actionName), zap.Any("data", data))
}

func (lc *LogFileDataCollector) RecordActionFailure(wfName string, executionId string, actionName string, reason string) {
	lc.logger.Info("failure", zap.String("workflow", wfName), zap.String("executionId", executionId), zap.String("action", actionName), zap.String("reason", reason))
}
