package main

import "academic-registrar/cmd"

func main() {
	cmd.Execute()
}
