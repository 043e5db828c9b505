package melody

import "fmt"

type WarningKind int

const (
	// An event could not be matched (e.g. a NoteOff with no sounding note) and was ignored.
	MalformedEventStream WarningKind = iota
	// The segment budget could not be met even at the coarsest grid; the output was truncated.
	BudgetUnreachable
	// A duration was larger than a table entry can hold and was clamped.
	DurationOverflow
)

func (k WarningKind) String() string {
	switch k {
	case MalformedEventStream:
		return "malformed event stream"
	case BudgetUnreachable:
		return "budget unreachable"
	case DurationOverflow:
		return "duration overflow"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is a non-fatal condition met while running the pipeline.
type Warning struct {
	Kind    WarningKind
	Index   int // Index of the offending event or segment, -1 if not applicable.
	Message string
}

func (w Warning) String() string {
	if w.Index < 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s at index %d: %s", w.Kind, w.Index, w.Message)
}

// warnings collects Warning values for a single stage.
type warnings []Warning

func (ws *warnings) add(kind WarningKind, index int, format string, args ...any) {
	*ws = append(*ws, Warning{
		Kind:    kind,
		Index:   index,
		Message: fmt.Sprintf(format, args...),
	})
}
