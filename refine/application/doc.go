// Package application implementa o caso de uso refinePrompt.
package application
