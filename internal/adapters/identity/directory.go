// Package identity holds the principals allowed to use the protected
// endpoints and checks their credentials and roles.
package identity

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/okian/platefinder/pkg/logger"
	"github.com/okian/platefinder/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// User is a principal definition as read from the users file.
type User struct {
	Username    string   `yaml:"username" json:"username"`
	DisplayName string   `yaml:"displayName" json:"displayName"`
	Password    string   `yaml:"password" json:"-"`
	Roles       []string `yaml:"roles" json:"roles"`
}

// Credential is a username and password pair presented by a caller.
type Credential struct {
	Username string
	Password string
}

type principal struct {
	hash  []byte
	roles []string
}

// Directory stores bcrypt-hashed principals. Safe for concurrent use.
type Directory struct {
	mu     sync.RWMutex
	users  map[string]principal
	cost   int
	logger logger.Logger
}

// Option applies a configuration option to the Directory.
type Option func(*Directory)

// WithCost sets the bcrypt cost used when hashing passwords.
func WithCost(cost int) Option {
	return func(d *Directory) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			d.cost = cost
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDirectory returns an empty directory.
func NewDirectory(opts ...Option) *Directory {
	d := &Directory{
		users:  make(map[string]principal),
		cost:   bcrypt.DefaultCost,
		logger: logger.Get().Named("identity"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add hashes u's password and stores the principal.
func (d *Directory) Add(u User) error { //nolint:gocritic // hugeParam: definitions are read by value
	name := strings.TrimSpace(u.Username)
	if name == "" {
		return fmt.Errorf("%w: missing username", ErrInvalidUser)
	}
	if u.Password == "" {
		return fmt.Errorf("%w: %s has no password", ErrInvalidUser, name)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), d.cost)
	if err != nil {
		return fmt.Errorf("hash password for %s: %w", name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[name]; ok {
		return fmt.Errorf("%w: %s", ErrUserExists, name)
	}
	d.users[name] = principal{hash: hash, roles: slices.Clone(u.Roles)}
	return nil
}

// Provision adds every user, logging and skipping those that fail. It
// returns the names that were created.
func (d *Directory) Provision(ctx context.Context, users []User) []string {
	created := make([]string, 0, len(users))
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			d.logger.Warn(ctx, "provisioning interrupted", logger.Error(err))
			break
		}
		if err := d.Add(u); err != nil {
			d.logger.Warn(ctx, "user not provisioned",
				logger.String("username", u.Username),
				logger.Error(err),
			)
			continue
		}
		d.logger.Info(ctx, "user provisioned",
			logger.String("username", u.Username),
			logger.Any("roles", u.Roles),
		)
		created = append(created, u.Username)
	}
	return created
}

// Len returns the number of principals.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

// IsAuthorized reports whether cred authenticates and holds any of allowedRoles.
func (d *Directory) IsAuthorized(ctx context.Context, cred Credential, allowedRoles ...string) bool {
	d.mu.RLock()
	p, ok := d.users[cred.Username]
	d.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(p.hash, []byte(cred.Password)) != nil {
		metrics.RecordAuthDecision("unauthenticated")
		d.logger.Debug(ctx, "authentication failed", logger.String("username", cred.Username))
		return false
	}
	for _, r := range p.roles {
		if slices.Contains(allowedRoles, r) {
			metrics.RecordAuthDecision("allowed")
			return true
		}
	}
	metrics.RecordAuthDecision("forbidden")
	d.logger.Debug(ctx, "role not allowed",
		logger.String("username", cred.Username),
		logger.Any("allowed", allowedRoles),
	)
	return false
}

// ParseBasic decodes an HTTP Basic Authorization header value.
func ParseBasic(header string) (Credential, error) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return Credential{}, ErrMalformedCredential
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %w", ErrMalformedCredential, err)
	}
	user, pass, ok := strings.Cut(string(raw), ":")
	if !ok {
		return Credential{}, ErrMalformedCredential
	}
	return Credential{Username: user, Password: pass}, nil
}

// LoadUsers reads user definitions from a YAML file.
func LoadUsers(path string) ([]User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var users []User
	if err := yaml.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", path, err)
	}
	return users, nil
}
