// Completion: 100% - Host CPU detection complete
//
// Package hostcpu maps the running machine's vector extensions to an
// encoding profile.
package hostcpu

import (
	"errors"

	"golang.org/x/sys/cpu"

	"github.com/xyproto/vise"
)

// ErrNoVectorFile means the host has none of the supported register
// files; callers pick a profile explicitly instead.
var ErrNoVectorFile = errors.New("hostcpu: no supported vector register file on this host")

// Detect builds the profile matching the host CPU.
func Detect(k vise.Knobs) (*vise.Profile, error) {
	switch {
	case cpu.X86.HasAVX512F:
		rev := vise.Rev1
		if cpu.X86.HasAVX512BW && cpu.X86.HasAVX512DQ {
			rev = vise.Rev2
		}
		return vise.NewAVX512Profile(rev, k), nil
	case cpu.MIPS64X.HasMSA:
		return vise.NewMSAProfile(k), nil
	}
	return nil, ErrNoVectorFile
}
