// Command csvtree builds project trees from CSV metric exports.
package main

import "os"

func main() {
	os.Exit(Execute(os.Args[1:]))
}
