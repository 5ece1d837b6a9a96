package main

import "github.com/Alijeyrad/myvoice_backend/cmd"

func main() {
	cmd.Execute()
}
