// Package application orquestra validação, cota diária, gravação e
// notificação de uma submissão de contato.
package application
