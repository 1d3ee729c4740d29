package main

import "github.com/avicenna-clinic/avicenna_backend/cmd"

func main() {
	cmd.Execute()
}
