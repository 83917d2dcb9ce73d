// Package domain define contratos e tipos de domínio do serviço de analytics.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar os algoritmos
// de janela deslizante dos detalhes do armazenamento (Redis, memória, etc).
package domain
