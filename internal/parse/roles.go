package parse

import "sync"

// Role is what a node type contributes to the record.
type Role uint8

const (
	RoleNone Role = iota
	RoleSampler
	RoleCheckpoint
	RoleLora
	RoleEncoder
	RoleLatent
	RoleSeed
	RoleGuider
)

func (r Role) String() string {
	switch r {
	case RoleSampler:
		return "sampler"
	case RoleCheckpoint:
		return "checkpoint-loader"
	case RoleLora:
		return "lora-loader"
	case RoleEncoder:
		return "text-encoder"
	case RoleLatent:
		return "latent-size"
	case RoleSeed:
		return "seed-source"
	case RoleGuider:
		return "guider"
	default:
		return "none"
	}
}

var (
	rolesMu sync.RWMutex
	roles   = map[string]Role{
		"KSampler":                    RoleSampler,
		"KSamplerAdvanced":            RoleSampler,
		"SamplerCustom":               RoleSampler,
		"SamplerCustomAdvanced":       RoleSampler,
		"XlabsSampler":                RoleSampler,
		"KSampler (Efficient)":        RoleSampler,
		"KSampler Adv. (Efficient)":   RoleSampler,
		"KSampler SDXL (Eff.)":        RoleSampler,
		"CheckpointLoaderSimple":      RoleCheckpoint,
		"CheckpointLoader":            RoleCheckpoint,
		"UNETLoader":                  RoleCheckpoint,
		"UnetLoaderGGUF":              RoleCheckpoint,
		"LoraLoader":                  RoleLora,
		"LoraLoaderModelOnly":         RoleLora,
		"Power Lora Loader (rgthree)": RoleLora,
		"CLIPTextEncode":              RoleEncoder,
		"CLIPTextEncodeSDXL":          RoleEncoder,
		"CLIPTextEncodeFlux":          RoleEncoder,
		"EmptyLatentImage":            RoleLatent,
		"EmptySD3LatentImage":         RoleLatent,
		"CascadeResolutions":          RoleLatent,
		"ImageScale":                  RoleLatent,
		"Seed Everywhere":             RoleSeed,
		"Seed (rgthree)":              RoleSeed,
		"PrimitiveNode":               RoleSeed,
		"CFGGuider":                   RoleGuider,
		"BasicGuider":                 RoleGuider,
	}
)

// RegisterRole assigns a role to a node type, replacing any earlier entry.
// Safe for concurrent use.
func RegisterRole(nodeType string, role Role) {
	rolesMu.Lock()
	defer rolesMu.Unlock()
	roles[nodeType] = role
}

// RoleOf returns the role registered for a node type.
func RoleOf(nodeType string) Role {
	rolesMu.RLock()
	defer rolesMu.RUnlock()
	return roles[nodeType]
}
