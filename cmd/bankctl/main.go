// The bankctl binary administers the bank over the gateway API.
package main

import "github.com/go-petr/micro-bank/internal/bankctl"

func main() {
	bankctl.Execute()
}
