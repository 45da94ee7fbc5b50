// Command faqrag runs the retrieval-augmented FAQ assistant.
package main

import "github.com/dlazzeri/faqrag/pkg/cli"

func main() {
	cli.Execute()
}
