// Package domain contém o catálogo de flavors e a montagem do prompt do
// refinamento. Tudo aqui é puro: nenhuma chamada de rede.
package domain
