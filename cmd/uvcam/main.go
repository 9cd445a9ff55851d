package main

import (
	"github.com/parsaforughi/pixxel-uv-effect/cmd/uvcam/cmd"
)

func main() {
	cmd.Execute()
}
