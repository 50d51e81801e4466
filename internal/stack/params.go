package stack

import (
	"net/netip"
	"strconv"
	"strings"
)

// Template parameter keys understood by the environment template.
const (
	paramMyIPAddress  = "MyIpAddress"
	paramKeyName      = "KeyName"
	paramInstanceType = "InstanceType"
	paramVolumeSize   = "VolumeSize"
)

// Parameters carries caller-supplied stack parameters. Zero values mean
// "not supplied": create falls back to template defaults, update keeps the
// previously set value.
type Parameters struct {
	// MyIP is the CIDR block granted SSH access. A bare IP is normalized
	// to a /32 before submission.
	MyIP string
	// KeyName is the EC2 key pair name used for SSH access.
	KeyName string
	// InstanceType overrides the template's default instance type.
	InstanceType string
	// VolumeSize overrides the root volume size in GiB.
	VolumeSize int
}

// TemplateParameter is one bound template parameter on the wire.
// UsePrevious asks the provider to keep the value from the last deployment
// instead of supplying a new one.
type TemplateParameter struct {
	Key         string
	Value       string
	UsePrevious bool
}

// NormalizeCIDR validates s as a CIDR block, appending /32 when the mask is
// omitted, and returns the canonical form.
func NormalizeCIDR(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &InvalidParameterError{Param: "my-ip", Reason: "value is empty"}
	}
	if !strings.Contains(s, "/") {
		s += "/32"
	}
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return "", &InvalidParameterError{Param: "my-ip", Reason: "not a valid CIDR block: " + err.Error()}
	}
	return prefix.String(), nil
}

// validateCreate checks the invariants for a create: MyIP and KeyName are
// required, MyIP must normalize to a CIDR. It returns the parameters with
// MyIP in canonical form.
func validateCreate(p Parameters) (Parameters, error) {
	if strings.TrimSpace(p.KeyName) == "" {
		return p, &InvalidParameterError{Param: "key-name", Reason: "value is empty"}
	}
	cidr, err := NormalizeCIDR(p.MyIP)
	if err != nil {
		return p, err
	}
	p.MyIP = cidr
	p.KeyName = strings.TrimSpace(p.KeyName)
	return p, nil
}

// createParameters binds parameters for a create submission. Unsupplied
// optional parameters are omitted so the template defaults apply.
func createParameters(p Parameters) []TemplateParameter {
	out := []TemplateParameter{
		{Key: paramMyIPAddress, Value: p.MyIP},
		{Key: paramKeyName, Value: p.KeyName},
	}
	if p.InstanceType != "" {
		out = append(out, TemplateParameter{Key: paramInstanceType, Value: p.InstanceType})
	}
	if p.VolumeSize > 0 {
		out = append(out, TemplateParameter{Key: paramVolumeSize, Value: strconv.Itoa(p.VolumeSize)})
	}
	return out
}

// updateParameters binds parameters for an update submission. Every known
// key is present: supplied values are sent, everything else is marked
// use-previous so the deployed values are preserved.
func updateParameters(p Parameters) ([]TemplateParameter, error) {
	out := make([]TemplateParameter, 0, 4)

	if strings.TrimSpace(p.MyIP) != "" {
		cidr, err := NormalizeCIDR(p.MyIP)
		if err != nil {
			return nil, err
		}
		out = append(out, TemplateParameter{Key: paramMyIPAddress, Value: cidr})
	} else {
		out = append(out, TemplateParameter{Key: paramMyIPAddress, UsePrevious: true})
	}

	if name := strings.TrimSpace(p.KeyName); name != "" {
		out = append(out, TemplateParameter{Key: paramKeyName, Value: name})
	} else {
		out = append(out, TemplateParameter{Key: paramKeyName, UsePrevious: true})
	}

	if p.InstanceType != "" {
		out = append(out, TemplateParameter{Key: paramInstanceType, Value: p.InstanceType})
	} else {
		out = append(out, TemplateParameter{Key: paramInstanceType, UsePrevious: true})
	}

	if p.VolumeSize > 0 {
		out = append(out, TemplateParameter{Key: paramVolumeSize, Value: strconv.Itoa(p.VolumeSize)})
	} else {
		out = append(out, TemplateParameter{Key: paramVolumeSize, UsePrevious: true})
	}

	return out, nil
}
