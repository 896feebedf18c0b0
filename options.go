package gtex

// Option configures a Texture during creation.
//
// Example:
//
//	tex, err := gtex.NewTexture(device, pool, cfg,
//	    gtex.WithSwizzle(gtex.Swizzle{R: gtex.ComponentR, G: gtex.ComponentR, B: gtex.ComponentR, A: gtex.ComponentOne}),
//	    gtex.WithPolicy(policy))
type Option func(*options)

type options struct {
	swizzle     Swizzle
	policy      *Policy
	labelPrefix string
}

func defaultOptions() options {
	return options{
		swizzle:     Identity,
		policy:      nil, // DefaultPolicy when nil
		labelPrefix: "gtex",
	}
}

// WithSwizzle sets the channel mapping of sampling views. The device
// must implement SwizzleDevice unless s is the identity.
func WithSwizzle(s Swizzle) Option {
	return func(o *options) {
		o.swizzle = s
	}
}

// WithPolicy sets the table that chooses between the copy and blit
// upload paths. Policies may be shared between textures.
func WithPolicy(p *Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLabelPrefix sets the prefix of the label generated when
// Config.Label is empty.
func WithLabelPrefix(prefix string) Option {
	return func(o *options) {
		o.labelPrefix = prefix
	}
}
