package main

import "github.com/meysamhadeli/odindoc/cmd"

func main() {
	cmd.Execute()
}
