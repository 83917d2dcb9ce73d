// Package application contém os casos de uso do serviço de analytics.
//
// Ele depende apenas do pacote domain e não conhece net/http. Aqui vivem os
// algoritmos de janela deslizante:
//
//   - Limiter: admissão da ingestão (janela de 1s no armazenamento)
//   - PresenceSet: conjunto "visto por último dentro da janela", genérico
//     sobre a chave (usuários ativos e sessões por usuário)
//   - Pageviews: agregação por bucket de minuto + ranking top-N
//   - Processor: orquestração de um evento ingerido
//
// Todo estado durável fica no domain.Store injetado; nenhum caso de uso
// guarda estado próprio nem faz retry ou log.
package application
