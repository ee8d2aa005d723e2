package models

// StepConfig is the typed configuration carried by one step kind.
type StepConfig interface {
	StepType() StepType
}

type EmailConfig struct {
	To         string `json:"to,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body,omitempty"`
	TemplateID string `json:"template_id,omitempty"`
}

func (EmailConfig) StepType() StepType { return StepTypeEmail }

type SMSConfig struct {
	To      string `json:"to,omitempty"`
	Message string `json:"message,omitempty"`
}

func (SMSConfig) StepType() StepType { return StepTypeSMS }

// DelayConfig pauses the pipeline. Unit is one of minutes, hours or days.
type DelayConfig struct {
	Duration int    `json:"duration,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

func (DelayConfig) StepType() StepType { return StepTypeDelay }

// ConditionConfig describes a predicate over a CRM field. The model has no
// successor for the false branch, so a failing condition simply stops the run.
type ConditionConfig struct {
	Field    string `json:"field,omitempty"`
	Operator string `json:"operator,omitempty"`
	Value    string `json:"value,omitempty"`
}

func (ConditionConfig) StepType() StepType { return StepTypeCondition }

type TaskConfig struct {
	Title     string `json:"title,omitempty"`
	Assignee  string `json:"assignee,omitempty"`
	Priority  string `json:"priority,omitempty"`
	DueInDays int    `json:"due_in_days,omitempty"`
}

func (TaskConfig) StepType() StepType { return StepTypeTask }

type AIAnalysisConfig struct {
	Analysis string `json:"analysis,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	Model    string `json:"model,omitempty"`
}

func (AIAnalysisConfig) StepType() StepType { return StepTypeAIAnalysis }

type CRMUpdateConfig struct {
	Object string `json:"object,omitempty"`
	Field  string `json:"field,omitempty"`
	Value  string `json:"value,omitempty"`
}

func (CRMUpdateConfig) StepType() StepType { return StepTypeCRMUpdate }

func emailSchema() *JSONSchema {
	return closedObject("Email", "Send an email to the contact", map[string]*Property{
		"to":          stringProperty("Recipient address or merge field", 320),
		"subject":     stringProperty("Subject line", 200),
		"body":        stringProperty("Message body", 10000),
		"template_id": stringProperty("Saved template to render instead of body", 64),
	})
}

func smsSchema() *JSONSchema {
	return closedObject("SMS", "Send a text message", map[string]*Property{
		"to":      stringProperty("Phone number or merge field", 32),
		"message": stringProperty("Message text", 1600),
	})
}

func delaySchema() *JSONSchema {
	return closedObject("Delay", "Wait before the next step", map[string]*Property{
		"duration": counterProperty("How long to wait"),
		"unit":     enumProperty("Unit of duration", "minutes", "hours", "days"),
	})
}

func conditionSchema() *JSONSchema {
	return closedObject("Condition", "Continue only when the predicate holds", map[string]*Property{
		"field":    stringProperty("CRM field to inspect", 128),
		"operator": enumProperty("Comparison", "equals", "not_equals", "contains", "greater_than", "less_than"),
		"value":    stringProperty("Value to compare against", 512),
	})
}

func taskSchema() *JSONSchema {
	return closedObject("Task", "Create a task for a teammate", map[string]*Property{
		"title":       stringProperty("Task title", 200),
		"assignee":    stringProperty("User the task is assigned to", 128),
		"priority":    enumProperty("Task priority", "low", "medium", "high"),
		"due_in_days": counterProperty("Days until the task is due"),
	})
}

func aiAnalysisSchema() *JSONSchema {
	return closedObject("AI Analysis", "Run an AI analysis over the record", map[string]*Property{
		"analysis": enumProperty("Kind of analysis", "sentiment", "lead_score", "summary", "next_best_action"),
		"prompt":   stringProperty("Extra instructions for the model", 4000),
		"model":    stringProperty("Model identifier", 64),
	})
}

func crmUpdateSchema() *JSONSchema {
	return closedObject("CRM Update", "Write a value to a CRM record", map[string]*Property{
		"object": enumProperty("Record type", "contact", "deal", "company"),
		"field":  stringProperty("Field to update", 128),
		"value":  stringProperty("New value", 512),
	})
}
