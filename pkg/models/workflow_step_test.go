package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStep(t *testing.T) {
	for _, stepType := range StepTypes() {
		t.Run(string(stepType), func(t *testing.T) {
			step, err := NewStep(stepType)
			require.NoError(t, err)

			assert.NotEmpty(t, step.ID)
			assert.Equal(t, stepType, step.Type)
			require.NotNil(t, step.Config)
			assert.Equal(t, stepType, step.Config.StepType())
		})
	}

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := NewStep("fax")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownStepType)
	})

	t.Run("ids are unique", func(t *testing.T) {
		first, _ := NewStep(StepTypeSMS)
		second, _ := NewStep(StepTypeSMS)
		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestWorkflowStep_JSON(t *testing.T) {
	step := NewStepWithConfig(DelayConfig{Duration: 2, Unit: "days"})
	step.Position = 3

	data, err := json.Marshal(step)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+step.ID+`","type":"delay","config":{"duration":2,"unit":"days"},"position":3}`, string(data))

	var decoded WorkflowStep
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *step, decoded)
}

func TestWorkflowStep_UnmarshalRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{
			name:    "unknown tag",
			payload: `{"id":"s1","type":"fax","config":{},"position":0}`,
			wantErr: ErrUnknownStepType,
		},
		{
			name:    "unexpected config key",
			payload: `{"id":"s1","type":"email","config":{"cc":"boss@example.com"},"position":0}`,
			wantErr: ErrInvalidStepConfig,
		},
		{
			name:    "enum violation",
			payload: `{"id":"s1","type":"delay","config":{"unit":"weeks"},"position":0}`,
			wantErr: ErrInvalidStepConfig,
		},
		{
			name:    "negative counter",
			payload: `{"id":"s1","type":"task","config":{"due_in_days":-1},"position":0}`,
			wantErr: ErrInvalidStepConfig,
		},
		{
			name:    "wrong value type",
			payload: `{"id":"s1","type":"sms","config":{"message":42},"position":0}`,
			wantErr: ErrInvalidStepConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var step WorkflowStep

			err := json.Unmarshal([]byte(tt.payload), &step)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWorkflowStep_MissingConfigDecodesToZero(t *testing.T) {
	var step WorkflowStep

	require.NoError(t, json.Unmarshal([]byte(`{"id":"s1","type":"condition","position":1}`), &step))
	assert.Equal(t, ConditionConfig{}, step.Config)
	assert.Equal(t, 1, step.Position)
}

func TestWorkflowStep_MarshalRejectsMismatchedConfig(t *testing.T) {
	step := &WorkflowStep{ID: "s1", Type: StepTypeEmail, Config: SMSConfig{Message: "hi"}}

	_, err := json.Marshal(step)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStepConfig)
}

func TestWorkflow_JSONRoundTripKeepsTypedSteps(t *testing.T) {
	workflow := validWorkflow()
	workflow.Steps = append(workflow.Steps,
		NewStepWithConfig(AIAnalysisConfig{Analysis: "lead_score"}),
		NewStepWithConfig(CRMUpdateConfig{Object: "deal", Field: "stage", Value: "qualified"}),
	)
	workflow.Normalize()

	data, err := json.Marshal(workflow)
	require.NoError(t, err)

	var decoded Workflow
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Len(t, decoded.Steps, 3)
	assert.Equal(t, AIAnalysisConfig{Analysis: "lead_score"}, decoded.Steps[1].Config)
	assert.Equal(t, 2, decoded.Steps[2].Position)
	assert.Equal(t, "lead_created", decoded.Trigger.Type)
}

func TestStepSchema(t *testing.T) {
	schema, err := StepSchema(StepTypeTask)
	require.NoError(t, err)
	assert.Equal(t, "object", schema.Type)
	assert.Contains(t, schema.Properties, "priority")

	_, err = StepSchema("fax")
	assert.ErrorIs(t, err, ErrUnknownStepType)
}
