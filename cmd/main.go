package main

import (
	cmd "github.com/freeradical16/comfyui-runpod-cuda-runtime/cmd/modelfetch"
)

func main() {
	cmd.Execute()
}
