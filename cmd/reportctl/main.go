// Command reportctl inspects dashboard reports and drives cache warmups.
package main

import "github.com/odyssey-erp/soit-dashboard/cmd/reportctl/cli"

func main() {
	cli.Execute()
}
