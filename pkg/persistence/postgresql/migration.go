package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description VARCHAR(500) NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'active', 'archived')),
				workflow_trigger JSONB,
				steps JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
		`,
		2: `
			CREATE TABLE workflow_executions (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (status IN ('success', 'failed')),
				duration_ms BIGINT NOT NULL DEFAULT 0,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_executions_workflow_id ON workflow_executions(workflow_id);
			CREATE INDEX idx_workflow_executions_started_at ON workflow_executions(started_at);
		`,
		3: `
			CREATE TABLE workflow_comments (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				author VARCHAR(255) NOT NULL,
				body TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE workflow_team_members (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(320) NOT NULL,
				role VARCHAR(20) NOT NULL
			);

			CREATE TABLE workflow_activities (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL,
				kind VARCHAR(100) NOT NULL,
				message TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_comments_workflow_id ON workflow_comments(workflow_id);
			CREATE INDEX idx_workflow_team_members_workflow_id ON workflow_team_members(workflow_id);
			CREATE INDEX idx_workflow_activities_workflow_id ON workflow_activities(workflow_id);
		`,
	}
}
