package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
	"github.com/penyaskito/dashboard-initiative/internal/logging"
)

// AuthorResolver finds or creates the account behind an author name.
// Lookup always precedes creation, so a name maps to one account.
type AuthorResolver struct {
	users       entity.Storage
	provenance  *Provenance
	role        string
	emailDomain string

	mu      sync.Mutex
	created int
}

// NewAuthorResolver creates a resolver storing accounts in users.
func NewAuthorResolver(users entity.Storage, provenance *Provenance, role, emailDomain string) *AuthorResolver {
	return &AuthorResolver{
		users:       users,
		provenance:  provenance,
		role:        role,
		emailDomain: emailDomain,
	}
}

// Resolve returns the id of the first account named name, creating an active
// account with the author role when none exists. New accounts are tracked for
// deletion before Resolve returns.
func (r *AuthorResolver) Resolve(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.users.LoadByProperties(ctx, entity.Properties{"name": {name}})
	if err != nil {
		return 0, fmt.Errorf("look up author: %w", err)
	}
	if len(existing) > 0 {
		return existing[0].ID(), nil
	}

	user, err := r.users.Create(entity.Values{
		"name":   name,
		"status": true,
		"roles":  []string{r.role},
		"mail":   AuthorEmail(name, r.emailDomain),
	})
	if err != nil {
		return 0, fmt.Errorf("create author: %w", err)
	}
	if err := r.users.Save(ctx, user); err != nil {
		return 0, fmt.Errorf("save author: %w", err)
	}
	if err := r.provenance.Record(ctx, map[string]string{user.UUID(): r.users.EntityType()}); err != nil {
		return 0, err
	}

	r.created++
	logging.FromContext(ctx).Info("author account created", "name", name, "uid", user.ID())
	return user.ID(), nil
}

// Created returns how many accounts this resolver has created.
func (r *AuthorResolver) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

// AuthorEmail derives the address of a generated account: spaces become dots
// and the local part is lowercased.
func AuthorEmail(name, domain string) string {
	local := cases.Lower(language.Und).String(strings.ReplaceAll(name, " ", "."))
	return local + "@" + domain
}
