// Package infra liga o refinamento ao modelo hospedado (Gemini).
package infra
