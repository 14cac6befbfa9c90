// Package access resolves whether a principal may perform an action on a
// project. Instead of scattering ad hoc boolean checks through the services,
// the decision is derived from an explicit, ordered list of grant rules so
// the policy can be tested in isolation from HTTP concerns.
package access

import (
	"context"
	"fmt"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/project"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/user"
)

// Principal identifies the actor asking for access.
type Principal struct {
	UserID string
	Role   user.Role
}

// Decision carries the outcome and the rule that produced it.
type Decision struct {
	Allowed bool
	Rule    string
}

const (
	RuleRolePermission    = "role-permission"
	RuleProjectCreator    = "project-creator"
	RuleProjectMembership = "project-membership"
	RuleDenied            = "denied"
)

// Resolver answers project access questions.
type Resolver interface {
	// CanAccessProject reports whether the principal may act on the project,
	// granted by the first matching rule: workspace-wide role permission,
	// project creator, then project membership.
	CanAccessProject(ctx context.Context, p Principal, proj project.Project, permission user.Permission) (Decision, error)

	// CanManageProject is the write-level variant: only a workspace-wide
	// manage permission or being the project creator grants it. Plain
	// membership does not.
	CanManageProject(ctx context.Context, p Principal, proj project.Project) (Decision, error)
}

type ResolverImpl struct {
	projects project.ProjectRepository
}

func NewResolver(projects project.ProjectRepository) Resolver {
	return &ResolverImpl{projects: projects}
}

// CanAccessProject implements Resolver.
func (r *ResolverImpl) CanAccessProject(ctx context.Context, p Principal, proj project.Project, permission user.Permission) (Decision, error) {
	if user.HasPermission(p.Role, permission) {
		return Decision{Allowed: true, Rule: RuleRolePermission}, nil
	}

	if proj.CreatedBy == p.UserID {
		return Decision{Allowed: true, Rule: RuleProjectCreator}, nil
	}

	isMember, err := r.projects.IsMember(ctx, proj.ID, p.UserID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to check project membership: %w", err)
	}
	if isMember {
		return Decision{Allowed: true, Rule: RuleProjectMembership}, nil
	}

	return Decision{Allowed: false, Rule: RuleDenied}, nil
}

// CanManageProject implements Resolver.
func (r *ResolverImpl) CanManageProject(ctx context.Context, p Principal, proj project.Project) (Decision, error) {
	if user.HasPermission(p.Role, user.PermissionProjectManage) {
		return Decision{Allowed: true, Rule: RuleRolePermission}, nil
	}
	if proj.CreatedBy == p.UserID {
		return Decision{Allowed: true, Rule: RuleProjectCreator}, nil
	}
	return Decision{Allowed: false, Rule: RuleDenied}, nil
}
