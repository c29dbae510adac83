// ABOUTME: Metric names emitted by the pipeline and the default statistics schema
// ABOUTME: Metrics is the narrow telemetry sink the pipeline writes to
package translate

import (
	"github.com/harper/mdtranslate/internal/llm"
	"github.com/harper/mdtranslate/internal/stats"
)

const (
	KpiTokensPerMinute = "per:minute:used:tokens"
	KpiOperations      = "per:minute:operations"
	KpiUsedTokens      = "total:used:tokens"
	KpiFiles           = "total:processed:files"
	KpiCalls           = "total:api:calls"
	KpiResponseTime    = "histogram:api:response:time"
	KpiErrors          = "total:api:errors"
	KpiCodes           = "histogram:api:errors"
	KpiRead            = "total:content:bytes:read"
	KpiWritten         = "total:content:bytes:written"
)

// Schema returns the statistics reported at the end of a run
func Schema() stats.Schema {
	return stats.Schema{
		KpiTokensPerMinute: {Description: "Used tokens per minute", Operation: stats.OpRange},
		KpiOperations:      {Description: "API calls per minute", Operation: stats.OpRange},
		KpiUsedTokens:      {Description: "Total used tokens", Operation: stats.OpSum},
		KpiFiles:           {Description: "Processed files", Operation: stats.OpCounter},
		KpiCalls:           {Description: "Number of API calls", Operation: stats.OpCounter},
		KpiResponseTime:    {Description: "API response time", Operation: stats.OpDuration},
		KpiErrors:          {Description: "Number of API errors", Operation: stats.OpCounter},
		KpiCodes:           {Description: "API response status codes", Operation: stats.OpFrequency},
		KpiRead:            {Description: "Bytes read from sources", Operation: stats.OpSum},
		KpiWritten:         {Description: "Bytes written to destinations", Operation: stats.OpSum},
	}
}

// Metrics receives telemetry events; *telemetry.Recorder implements it
type Metrics interface {
	Increment(name string, value float64)
	Value(name string, value float64)
	Duration(name, tag string)
}

type discard struct{}

func (discard) Increment(string, float64) {}
func (discard) Value(string, float64)     {}
func (discard) Duration(string, string)   {}

// Discard is a Metrics sink that drops every event
var Discard Metrics = discard{}

// RecordUsage converts translator usage reports into token and status code events
func RecordUsage(m Metrics) llm.UsageFunc {
	return func(u llm.Usage) {
		m.Value(KpiCodes, float64(u.StatusCode))
		if u.TotalTokens > 0 {
			m.Increment(KpiTokensPerMinute, float64(u.TotalTokens))
			m.Increment(KpiUsedTokens, float64(u.TotalTokens))
		}
	}
}
