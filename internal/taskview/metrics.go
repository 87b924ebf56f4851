package taskview

import (
	"fmt"
	"math"
	"strconv"

	"github.com/fentz26/sailboard/internal/models"
)

// Metric is one labelled count pulled from a task's attributes.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// metricKeys is the fixed, ordered set of attributes summarized for a task.
var metricKeys = []struct {
	key   string
	label string
}{
	{"total", "Total"},
	{"created", "Created"},
	{"updated", "Updated"},
	{"deleted", "Deleted"},
	{"optimized", "Unchanged"},
}

// SummarizeMetrics extracts the well-known count attributes from a task.
//
// A metric is included only when its attribute is present and truthy,
// so a real zero count is dropped along with absent ones. It returns
// nil when the task has no attributes or nothing qualifies.
func SummarizeMetrics(task models.Task) []Metric {
	if task.Attributes == nil {
		return nil
	}

	var metrics []Metric
	for _, m := range metricKeys {
		value, ok := task.Attributes[m.key]
		if !ok || !truthy(value) {
			continue
		}
		metrics = append(metrics, Metric{Label: m.label, Value: stringify(value)})
	}
	return metrics
}

// MaxReturnValues is the number of return values listed before the rest
// are collapsed into a count.
const MaxReturnValues = 8

// ReturnValue is a task return attribute resolved against the attributes map.
type ReturnValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ReturnSummary lists the first MaxReturnValues return values and how
// many more were left out.
type ReturnSummary struct {
	Values []ReturnValue `json:"values,omitempty"`
	More   int           `json:"more,omitempty"`
}

// ReturnValues resolves the task's declared returns. A value that is
// missing or falsy is shown as NotAvailable.
func ReturnValues(task models.Task) ReturnSummary {
	var summary ReturnSummary
	for i, ret := range task.Returns {
		if i >= MaxReturnValues {
			summary.More = len(task.Returns) - MaxReturnValues
			break
		}
		value := NotAvailable
		if v, ok := task.Attributes[ret.AttributeName]; ok && truthy(v) {
			value = stringify(v)
		}
		summary.Values = append(summary.Values, ReturnValue{Name: ret.AttributeName, Value: value})
	}
	return summary
}

// MessageTexts returns the localized text of each task message in order.
// Messages without localized text are shown as NotAvailable.
func MessageTexts(task models.Task) []string {
	if len(task.Messages) == 0 {
		return nil
	}
	texts := make([]string, 0, len(task.Messages))
	for _, msg := range task.Messages {
		if msg.LocalizedText == nil {
			texts = append(texts, NotAvailable)
			continue
		}
		texts = append(texts, msg.LocalizedText.Message)
	}
	return texts
}

// truthy applies loose truthiness to a decoded JSON scalar: nil, false,
// zero, NaN and the empty string are false.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	default:
		return true
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
