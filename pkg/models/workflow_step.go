package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

type StepType string

const (
	StepTypeEmail      StepType = "email"
	StepTypeSMS        StepType = "sms"
	StepTypeDelay      StepType = "delay"
	StepTypeCondition  StepType = "condition"
	StepTypeTask       StepType = "task"
	StepTypeAIAnalysis StepType = "ai_analysis"
	StepTypeCRMUpdate  StepType = "crm_update"
)

var (
	// ErrUnknownStepType is returned when a step tag is not part of the vocabulary.
	ErrUnknownStepType = errors.New("unknown step type")

	// ErrInvalidStepConfig is returned when a step configuration fails its schema.
	ErrInvalidStepConfig = errors.New("invalid step configuration")
)

type stepKind struct {
	schema    *JSONSchema
	validator *gojsonschema.Schema
	zero      StepConfig
	decode    func(raw []byte) (StepConfig, error)
}

var stepKinds = map[StepType]*stepKind{
	StepTypeEmail:      {schema: emailSchema(), zero: EmailConfig{}, decode: decodeConfig[EmailConfig]},
	StepTypeSMS:        {schema: smsSchema(), zero: SMSConfig{}, decode: decodeConfig[SMSConfig]},
	StepTypeDelay:      {schema: delaySchema(), zero: DelayConfig{}, decode: decodeConfig[DelayConfig]},
	StepTypeCondition:  {schema: conditionSchema(), zero: ConditionConfig{}, decode: decodeConfig[ConditionConfig]},
	StepTypeTask:       {schema: taskSchema(), zero: TaskConfig{}, decode: decodeConfig[TaskConfig]},
	StepTypeAIAnalysis: {schema: aiAnalysisSchema(), zero: AIAnalysisConfig{}, decode: decodeConfig[AIAnalysisConfig]},
	StepTypeCRMUpdate:  {schema: crmUpdateSchema(), zero: CRMUpdateConfig{}, decode: decodeConfig[CRMUpdateConfig]},
}

func init() {
	for stepType, kind := range stepKinds {
		compiled, err := kind.schema.compile()
		if err != nil {
			panic(fmt.Sprintf("invalid schema for step type %s: %v", stepType, err))
		}

		kind.validator = compiled
	}
}

// StepTypes lists the known step kinds in a stable order.
func StepTypes() []StepType {
	types := make([]StepType, 0, len(stepKinds))
	for stepType := range stepKinds {
		types = append(types, stepType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// IsValid reports whether the step type is part of the vocabulary.
func (t StepType) IsValid() bool {
	_, ok := stepKinds[t]

	return ok
}

// StepSchema returns the configuration schema for a step type.
func StepSchema(stepType StepType) (*JSONSchema, error) {
	kind, ok := stepKinds[stepType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStepType, stepType)
	}

	return kind.schema, nil
}

// WorkflowStep is one action in a workflow's ordered pipeline.
type WorkflowStep struct {
	ID       string
	Type     StepType
	Config   StepConfig
	Position int
}

// NewStep instantiates a step of the given kind with a fresh UUID and an empty configuration.
func NewStep(stepType StepType) (*WorkflowStep, error) {
	kind, ok := stepKinds[stepType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStepType, stepType)
	}

	return &WorkflowStep{
		ID:     uuid.NewString(),
		Type:   stepType,
		Config: kind.zero,
	}, nil
}

// NewStepWithConfig instantiates a step whose kind is taken from its configuration.
func NewStepWithConfig(config StepConfig) *WorkflowStep {
	return &WorkflowStep{
		ID:     uuid.NewString(),
		Type:   config.StepType(),
		Config: config,
	}
}

// Clone copies the step. Configurations are value types, so the copy is deep.
func (s *WorkflowStep) Clone() *WorkflowStep {
	if s == nil {
		return nil
	}

	clone := *s

	return &clone
}

type stepJSON struct {
	ID       string          `json:"id"`
	Type     StepType        `json:"type"`
	Config   json.RawMessage `json:"config,omitempty"`
	Position int             `json:"position"`
}

func (s WorkflowStep) MarshalJSON() ([]byte, error) {
	config := s.Config
	if config == nil {
		if kind, ok := stepKinds[s.Type]; ok {
			config = kind.zero
		}
	}

	var raw []byte

	if config != nil {
		if config.StepType() != s.Type {
			return nil, fmt.Errorf("%w: %s config on %s step", ErrInvalidStepConfig, config.StepType(), s.Type)
		}

		encoded, err := json.Marshal(config)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config of step %s: %w", s.ID, err)
		}

		raw = encoded
	}

	return json.Marshal(stepJSON{
		ID:       s.ID,
		Type:     s.Type,
		Config:   raw,
		Position: s.Position,
	})
}

func (s *WorkflowStep) UnmarshalJSON(data []byte) error {
	var raw stepJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	config, err := DecodeStepConfig(raw.Type, raw.Config)
	if err != nil {
		return err
	}

	s.ID = raw.ID
	s.Type = raw.Type
	s.Config = config
	s.Position = raw.Position

	return nil
}

// DecodeStepConfig validates a raw configuration against its kind's schema and decodes it.
func DecodeStepConfig(stepType StepType, raw []byte) (StepConfig, error) {
	kind, ok := stepKinds[stepType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStepType, stepType)
	}

	if len(raw) == 0 || string(raw) == "null" {
		return kind.zero, nil
	}

	result, err := kind.validator.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidStepConfig, stepType, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidStepConfig, stepType, strings.Join(details, "; "))
	}

	return kind.decode(raw)
}

func decodeConfig[T StepConfig](raw []byte) (StepConfig, error) {
	var config T
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStepConfig, err)
	}

	return config, nil
}
