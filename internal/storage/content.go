// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/workspace-service/internal/types"
)

func (s *Storage) CreateProject(ctx context.Context, p *types.Project) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateProject")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project ID: %w", err)
	}

	created := new(types.Project)
	err = s.db.Statement(ctx).
		Insert("projects").
		Columns("id", "workspace_id", "name", "description").
		Values(id, p.WorkspaceID, p.Name, p.Description).
		Suffix("RETURNING id, workspace_id, name, description, created_at").
		QueryRowContext(ctx).
		Scan(&created.ID, &created.WorkspaceID, &created.Name, &created.Description, &created.CreatedAt)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, WrapForeignKeyError(err, "workspace does not exist")
		}
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	return created, nil
}

func (s *Storage) GetProject(ctx context.Context, id string) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetProject")
	defer span.End()

	p := new(types.Project)
	err := s.db.Statement(ctx).
		Select("id", "workspace_id", "name", "description", "created_at").
		From("projects").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &p.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return p, nil
}

func (s *Storage) ListProjects(ctx context.Context, workspaceID string) ([]*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListProjects")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "workspace_id", "name", "description", "created_at").
		From("projects").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("created_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*types.Project, 0)
	for rows.Next() {
		p := new(types.Project)
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return projects, nil
}

func (s *Storage) CreateTask(ctx context.Context, t *types.Task) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTask")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	created := new(types.Task)
	err = s.db.Statement(ctx).
		Insert("tasks").
		Columns("id", "project_id", "title", "description").
		Values(id, t.ProjectID, t.Title, t.Description).
		Suffix("RETURNING id, project_id, title, description, created_at").
		QueryRowContext(ctx).
		Scan(&created.ID, &created.ProjectID, &created.Title, &created.Description, &created.CreatedAt)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, WrapForeignKeyError(err, "project does not exist")
		}
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	return created, nil
}

func (s *Storage) GetTask(ctx context.Context, id string) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTask")
	defer span.End()

	t := new(types.Task)
	err := s.db.Statement(ctx).
		Select("id", "project_id", "title", "description", "created_at").
		From("tasks").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return t, nil
}

func (s *Storage) ListTasks(ctx context.Context, projectID string) ([]*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTasks")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "project_id", "title", "description", "created_at").
		From("tasks").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("created_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*types.Task, 0)
	for rows.Next() {
		t := new(types.Task)
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tasks, nil
}

// GetTaskWorkspaceID resolves the owning workspace of a task in a single query
func (s *Storage) GetTaskWorkspaceID(ctx context.Context, taskID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTaskWorkspaceID")
	defer span.End()

	var workspaceID string
	err := s.db.Statement(ctx).
		Select("p.workspace_id").
		From("tasks t").
		Join("projects p ON t.project_id = p.id").
		Where(sq.Eq{"t.id": taskID}).
		QueryRowContext(ctx).
		Scan(&workspaceID)

	if err != nil {
		if isNoRows(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve task workspace: %w", err)
	}

	return workspaceID, nil
}
