// Package callable expõe os serviços como RPCs no estilo "callable function":
// POST com {"data": {...}}, resposta {"result": ...} ou {"error": {...}}.
package callable
