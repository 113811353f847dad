// Package infra traz os adaptadores de contato: repositórios gorm e em memória
// e o notificador por e-mail.
package infra
