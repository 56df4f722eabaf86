package domain

// Channel types.
const (
	ChannelTypePublic = "public"
	ChannelTypeSecure = "secure"
)

// Channel publish policies.
const (
	PublishPolicyAnything     = "anythingPublished"
	PublishPolicyOnlyApproved = "onlyApproved"
)

// DefaultTokenName is the name of the token preferred for delivery URLs.
const DefaultTokenName = "defaultToken"

// Channel is a publishing destination.
type Channel struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	ChannelType          string         `json:"channelType"`
	PublishPolicy        string         `json:"publishPolicy"`
	LocalizationPolicyID string         `json:"localizationPolicy,omitempty"`
	IsSiteChannel        bool           `json:"isSiteChannel"`
	Tokens               []ChannelToken `json:"channelTokens,omitempty"`
}

// Ref returns the membership reference for c.
func (c Channel) Ref() ChannelRef {
	return ChannelRef{ID: c.ID, Name: c.Name}
}

// ChannelToken is a delivery credential of a channel. Servers return the
// value either in Token or in ChannelToken.
type ChannelToken struct {
	Name         string `json:"name"`
	Token        string `json:"token"`
	ChannelToken string `json:"channelToken"`
}

// CreateChannelRequest holds parameters for creating a channel.
type CreateChannelRequest struct {
	Name                 string
	Description          string
	ChannelType          string
	PublishPolicy        string
	LocalizationPolicyID string
}

// Validate checks that the request is well-formed and fills defaults.
func (r *CreateChannelRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("channel name is required")
	}
	if r.ChannelType == "" {
		r.ChannelType = ChannelTypePublic
	}
	if r.ChannelType != ChannelTypePublic && r.ChannelType != ChannelTypeSecure {
		return ErrValidation("channel type must be '%s' or '%s'", ChannelTypePublic, ChannelTypeSecure)
	}
	if r.PublishPolicy == "" {
		r.PublishPolicy = PublishPolicyAnything
	}
	if r.PublishPolicy != PublishPolicyAnything && r.PublishPolicy != PublishPolicyOnlyApproved {
		return ErrValidation("publish policy must be '%s' or '%s'", PublishPolicyAnything, PublishPolicyOnlyApproved)
	}
	return nil
}
