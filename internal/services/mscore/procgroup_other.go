//go:build !unix

package mscore

import "os/exec"

func configureProcessGroup(*exec.Cmd) {}
