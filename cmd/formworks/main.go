// Package main is the entry point for Formworks, a self-hosted form builder
// backend with versioned schemas, dynamic validation, and CSV export.
package main

func main() {
	Execute()
}
