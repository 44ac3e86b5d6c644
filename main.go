// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/pkgtab/cmd/pkgtab"

func main() {
	cmd.Execute()
}
