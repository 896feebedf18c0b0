package gtex

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
)

// UploadPath is the strategy used to move host pixels into an image.
type UploadPath uint8

const (
	// PathCopy stages host bytes in a buffer and copies them verbatim.
	PathCopy UploadPath = iota
	// PathBlit stages host bytes in an intermediate image of the host
	// format and blits it into the target, converting on the GPU.
	PathBlit
	// PathReject refuses the upload.
	PathReject
)

func (p UploadPath) String() string {
	switch p {
	case PathCopy:
		return "copy"
	case PathBlit:
		return "blit"
	case PathReject:
		return "reject"
	}
	return "unknown"
}

func parsePath(s string) (UploadPath, error) {
	switch strings.ToLower(s) {
	case "copy":
		return PathCopy, nil
	case "blit":
		return PathBlit, nil
	case "reject":
		return PathReject, nil
	}
	return PathReject, errors.Wrapf(ErrInvalidConfig, "unknown upload path %q", s)
}

type formatPair struct {
	host, device gputypes.TextureFormat
}

// Policy maps (host format, device format) pairs to upload paths.
// Explicit rules win; pairs without a rule fall back to:
//
//   - copy when the formats match after dropping sRGB encoding,
//   - blit when both are uncompressed, filterable color formats,
//   - reject otherwise.
//
// A Policy is read-only once handed to a texture.
type Policy struct {
	rules map[formatPair]UploadPath
}

// DefaultPolicy returns a policy with no explicit rules.
func DefaultPolicy() *Policy {
	return &Policy{rules: make(map[formatPair]UploadPath)}
}

// SetRule overrides the path for one format pair.
func (p *Policy) SetRule(host, device gputypes.TextureFormat, path UploadPath) {
	p.rules[formatPair{host, device}] = path
}

// Rules returns the number of explicit rules.
func (p *Policy) Rules() int { return len(p.rules) }

// Path returns the upload path for host data of format host into an
// image of format device.
func (p *Policy) Path(host, device gputypes.TextureFormat) UploadPath {
	if path, ok := p.rules[formatPair{host, device}]; ok {
		return path
	}
	if linearFormat(host) == linearFormat(device) {
		return PathCopy
	}
	if blittable(host) && blittable(device) {
		return PathBlit
	}
	return PathReject
}

// blittable reports whether f can be sampled with filtering and rendered
// by a raster blit.
func blittable(f gputypes.TextureFormat) bool {
	if f.IsDepthStencil() || compressed(f) || !filterable(f) {
		return false
	}
	_, ok := formatBlock(f)
	return ok
}

type policyFile struct {
	Rules []struct {
		Host   string `json:"host"`
		Device string `json:"device"`
		Path   string `json:"path"`
	} `json:"rules"`
}

// LoadPolicy reads a policy from JSON of the form
//
//	{"rules": [{"host": "RGBA8Unorm", "device": "BGRA8Unorm", "path": "blit"}]}
//
// Format names follow gputypes.TextureFormat.String and are matched
// without regard to case. Malformed input fails with ErrInvalidConfig.
func LoadPolicy(r io.Reader) (*Policy, error) {
	var f policyFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "decode upload policy: %v", err)
	}
	p := DefaultPolicy()
	for i, rule := range f.Rules {
		host, ok := ParseFormat(rule.Host)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidConfig, "rule %d: unknown host format %q", i, rule.Host)
		}
		device, ok := ParseFormat(rule.Device)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidConfig, "rule %d: unknown device format %q", i, rule.Device)
		}
		path, err := parsePath(rule.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "rule %d", i)
		}
		p.SetRule(host, device, path)
	}
	return p, nil
}
