package apiclient

// Metadata describes a shared template.
type Metadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	Version     string   `json:"version"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// PackageConfig holds per-package install hooks.
type PackageConfig struct {
	PreInstall  []string `json:"pre_install,omitempty" yaml:"pre_install,omitempty" toml:"pre_install,omitempty"`
	PostInstall []string `json:"post_install,omitempty" yaml:"post_install,omitempty" toml:"post_install,omitempty"`
}

// Hooks holds global lifecycle hooks.
type Hooks struct {
	PreInstall  []string `json:"pre_install,omitempty" yaml:"pre_install,omitempty" toml:"pre_install,omitempty"`
	PostInstall []string `json:"post_install,omitempty" yaml:"post_install,omitempty" toml:"post_install,omitempty"`
	PreSync     []string `json:"pre_sync,omitempty" yaml:"pre_sync,omitempty" toml:"pre_sync,omitempty"`
	PostSync    []string `json:"post_sync,omitempty" yaml:"post_sync,omitempty" toml:"post_sync,omitempty"`
	PreStow     []string `json:"pre_stow,omitempty" yaml:"pre_stow,omitempty" toml:"pre_stow,omitempty"`
	PostStow    []string `json:"post_stow,omitempty" yaml:"post_stow,omitempty" toml:"post_stow,omitempty"`
}

// Template is a stored template as returned by the API.
// Metadata may be absent on malformed records; readers must tolerate nil.
type Template struct {
	ID             string                   `json:"id" validate:"required"`
	Taps           []string                 `json:"taps"`
	Brews          []string                 `json:"brews"`
	Casks          []string                 `json:"casks"`
	Stow           []string                 `json:"stow,omitempty"`
	Metadata       *Metadata                `json:"metadata"`
	Extends        string                   `json:"extends,omitempty"`
	Overrides      []string                 `json:"overrides,omitempty"`
	AddOnly        bool                     `json:"addOnly"`
	Public         bool                     `json:"public"`
	Featured       bool                     `json:"featured"`
	OrganizationID string                   `json:"organization_id,omitempty"`
	Hooks          *Hooks                   `json:"hooks,omitempty"`
	PackageConfigs map[string]PackageConfig `json:"package_configs,omitempty"`
	Downloads      int64                    `json:"downloads" validate:"gte=0"`
	CreatedAt      string                   `json:"created_at,omitempty"`
	UpdatedAt      string                   `json:"updated_at,omitempty"`
}

// Name returns the template name, or "" when metadata is absent.
func (t *Template) Name() string {
	if t == nil || t.Metadata == nil {
		return ""
	}
	return t.Metadata.Name
}

// Tags returns the template tags, or nil when metadata is absent.
func (t *Template) Tags() []string {
	if t == nil || t.Metadata == nil {
		return nil
	}
	return t.Metadata.Tags
}

// TemplateInput is the body of a create or update template request.
type TemplateInput struct {
	Taps           []string                 `json:"taps" yaml:"taps" toml:"taps"`
	Brews          []string                 `json:"brews" yaml:"brews" toml:"brews"`
	Casks          []string                 `json:"casks" yaml:"casks" toml:"casks"`
	Stow           []string                 `json:"stow,omitempty" yaml:"stow,omitempty" toml:"stow,omitempty"`
	Metadata       MetadataInput            `json:"metadata" yaml:"metadata" toml:"metadata"`
	Extends        string                   `json:"extends,omitempty" yaml:"extends,omitempty" toml:"extends,omitempty"`
	Overrides      []string                 `json:"overrides,omitempty" yaml:"overrides,omitempty" toml:"overrides,omitempty"`
	AddOnly        bool                     `json:"addOnly" yaml:"addOnly" toml:"addOnly"`
	Public         bool                     `json:"public" yaml:"public" toml:"public"`
	Featured       bool                     `json:"featured,omitempty" yaml:"featured,omitempty" toml:"featured,omitempty"`
	OrganizationID string                   `json:"organization_id,omitempty" yaml:"organization_id,omitempty" toml:"organization_id,omitempty"`
	Hooks          *Hooks                   `json:"hooks,omitempty" yaml:"hooks,omitempty" toml:"hooks,omitempty"`
	PackageConfigs map[string]PackageConfig `json:"package_configs,omitempty" yaml:"package_configs,omitempty" toml:"package_configs,omitempty"`
}

// MetadataInput is the metadata section of a TemplateInput.
type MetadataInput struct {
	Name        string   `json:"name" yaml:"name" toml:"name" validate:"required"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	Author      string   `json:"author" yaml:"author" toml:"author"`
	Tags        []string `json:"tags" yaml:"tags" toml:"tags"`
	Version     string   `json:"version" yaml:"version" toml:"version"`
}

// TemplateStats holds catalog-wide counters.
type TemplateStats struct {
	TotalTemplates    int   `json:"total_templates"`
	FeaturedTemplates int   `json:"featured_templates"`
	TotalDownloads    int64 `json:"total_downloads"`
	Categories        int   `json:"categories"`
}

// Rating is the rating aggregate for one template.
// Distribution is keyed by star value "1".."5"; missing keys count as zero.
type Rating struct {
	TemplateID    string         `json:"template_id"`
	AverageRating float64        `json:"average_rating" validate:"gte=0,lte=5"`
	TotalRatings  int            `json:"total_ratings" validate:"gte=0"`
	Distribution  map[string]int `json:"distribution"`
}

// User is a platform user as seen by the client.
type User struct {
	ID          string   `json:"id" validate:"required"`
	GitHubID    int64    `json:"github_id,omitempty"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	AvatarURL   string   `json:"avatar_url"`
	Bio         string   `json:"bio"`
	Location    string   `json:"location"`
	Website     string   `json:"website"`
	Company     string   `json:"company"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
	Favorites   []string `json:"favorites"`
	Collections []string `json:"collections,omitempty"`
}

// HasFavorite reports whether templateID is in the user's favorites.
func (u *User) HasFavorite(templateID string) bool {
	if u == nil {
		return false
	}
	for _, id := range u.Favorites {
		if id == templateID {
			return true
		}
	}
	return false
}

// UserUpdate is a partial profile update. Nil fields are left unchanged.
type UserUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Location *string `json:"location,omitempty"`
	Website  *string `json:"website,omitempty"`
	Company  *string `json:"company,omitempty"`
}

// currentUserResponse is the body of GET /auth/user.
type currentUserResponse struct {
	User       *User `json:"user"`
	Configured bool  `json:"configured"`
}

// Review is a user review of a template.
type Review struct {
	ID         string `json:"id" validate:"required"`
	TemplateID string `json:"template_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	Comment    string `json:"comment"`
	Helpful    int    `json:"helpful" validate:"gte=0"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ReviewInput is the body of a create review request.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// ReviewUpdate is a partial review update. Nil fields are left unchanged.
type ReviewUpdate struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// Role is an organization membership role.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Assignable reports whether the role can be granted through invites or role changes.
func (r Role) Assignable() bool {
	return r == RoleAdmin || r == RoleMember
}

// Organization is a group that can own templates.
type Organization struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Description string   `json:"description"`
	Website     string   `json:"website,omitempty"`
	OwnerID     string   `json:"owner_id"`
	Public      bool     `json:"public"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
	MemberCount int      `json:"member_count" validate:"gte=0"`
	Members     []Member `json:"members,omitempty" validate:"dive"`
}

// Title returns the display name, falling back to the machine name.
func (o *Organization) Title() string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.Name
}

// OrganizationInput is the body of a create or update organization request.
type OrganizationInput struct {
	Name        string `json:"name" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	Description string `json:"description"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
	Public      bool   `json:"public"`
}

// Member is a membership record.
type Member struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id" validate:"required"`
	Role           Role   `json:"role" validate:"oneof=owner admin member"`
	JoinedAt       string `json:"joined_at"`
}

// Invitation is a pending offer of organization membership.
type Invitation struct {
	ID             string  `json:"id" validate:"required"`
	OrganizationID string  `json:"organization_id"`
	Email          string  `json:"email"`
	Role           Role    `json:"role" validate:"omitempty,oneof=owner admin member"`
	Token          string  `json:"token,omitempty"`
	InvitedBy      string  `json:"invited_by"`
	CreatedAt      string  `json:"created_at"`
	ExpiresAt      string  `json:"expires_at"`
	AcceptedAt     *string `json:"accepted_at,omitempty"`
}

type memberRequest struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

type roleRequest struct {
	Role Role `json:"role"`
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type acceptInviteRequest struct {
	Token string `json:"token"`
}
