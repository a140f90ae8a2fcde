package transform

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/folio/internal/model"
)

// Step is an atomic document change. Steps are immutable values.
type Step interface {
	// Apply applies the step to doc.
	Apply(doc *model.Node) (*model.Node, error)

	// StepMap describes how the step moves positions.
	StepMap() *StepMap

	// Invert returns the step that undoes this one, given the document
	// the step was applied to.
	Invert(doc *model.Node) Step

	// MapThrough maps the step through a mapping. It returns nil when the
	// step's content was deleted.
	MapThrough(m Mappable) Step

	// Merge combines the step with a following one, when possible.
	Merge(other Step) (Step, bool)

	// ToRecord returns the interchange form.
	ToRecord() StepRecord
}

// StepRecord is the interchange form of a step.
type StepRecord struct {
	StepType  string             `json:"stepType"`
	From      int                `json:"from,omitempty"`
	To        int                `json:"to,omitempty"`
	GapFrom   int                `json:"gapFrom,omitempty"`
	GapTo     int                `json:"gapTo,omitempty"`
	Insert    int                `json:"insert,omitempty"`
	Pos       int                `json:"pos,omitempty"`
	Slice     *model.SliceRecord `json:"slice,omitempty"`
	Structure bool               `json:"structure,omitempty"`
	Mark      *model.MarkRecord  `json:"mark,omitempty"`
	Attr      string             `json:"attr,omitempty"`
	Value     any                `json:"value,omitempty"`
}

// MarshalStep encodes a step as JSON.
func MarshalStep(s Step) ([]byte, error) {
	return json.Marshal(s.ToRecord())
}

func sliceRecord(s *model.Slice) *model.SliceRecord {
	if s.Content.Size() == 0 {
		return nil
	}
	rec := s.ToRecord()
	return &rec
}

// StepFromJSON decodes a step against schema.
func StepFromJSON(schema *model.Schema, data []byte) (Step, error) {
	if !gjson.ValidBytes(data) {
		return nil, &model.DeserializationError{Message: "malformed step JSON"}
	}
	return StepFromResult(schema, gjson.ParseBytes(data))
}

// StepsFromJSON decodes a JSON array of steps.
func StepsFromJSON(schema *model.Schema, data []byte) ([]Step, error) {
	if !gjson.ValidBytes(data) {
		return nil, &model.DeserializationError{Message: "malformed step JSON"}
	}
	res := gjson.ParseBytes(data)
	if !res.IsArray() {
		return nil, &model.DeserializationError{Message: "steps must be an array"}
	}
	var steps []Step
	for i, item := range res.Array() {
		s, err := StepFromResult(schema, item)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// StepFromResult decodes a step from a parsed JSON value.
func StepFromResult(schema *model.Schema, res gjson.Result) (Step, error) {
	slice := func() (*model.Slice, error) {
		rec, err := model.SliceRecordFromResult(res.Get("slice"), "slice")
		if err != nil {
			return nil, err
		}
		return schema.SliceFromRecord(rec)
	}
	mark := func() (*model.Mark, error) {
		rec, err := model.MarkRecordFromResult(res.Get("mark"), "mark")
		if err != nil {
			return nil, err
		}
		return schema.MarkFromRecord(rec)
	}
	from, to := int(res.Get("from").Int()), int(res.Get("to").Int())
	switch typ := res.Get("stepType").String(); typ {
	case "replace":
		s, err := slice()
		if err != nil {
			return nil, err
		}
		return NewReplaceStep(from, to, s, res.Get("structure").Bool()), nil
	case "replaceAround":
		s, err := slice()
		if err != nil {
			return nil, err
		}
		return NewReplaceAroundStep(from, to, int(res.Get("gapFrom").Int()), int(res.Get("gapTo").Int()),
			s, int(res.Get("insert").Int()), res.Get("structure").Bool()), nil
	case "addMark":
		m, err := mark()
		if err != nil {
			return nil, err
		}
		return NewAddMarkStep(from, to, m), nil
	case "removeMark":
		m, err := mark()
		if err != nil {
			return nil, err
		}
		return NewRemoveMarkStep(from, to, m), nil
	case "attr":
		attr := res.Get("attr").String()
		if attr == "" {
			return nil, &model.DeserializationError{Message: "attr step without attribute name"}
		}
		return NewAttrStep(int(res.Get("pos").Int()), attr, res.Get("value").Value()), nil
	default:
		return nil, &model.DeserializationError{Message: fmt.Sprintf("step type %q", typ), Err: ErrUnknownStep}
	}
}
