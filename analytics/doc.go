// Package analytics fornece a camada HTTP (net/http + chi) do serviço de
// analytics em tempo real.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (capability do armazenamento,
//     espaço de chaves, erros), sem dependência de net/http
//   - application: casos de uso (admissão, presença em janela, agregação
//     de pageviews, processamento de evento) sem net/http
//   - infra: implementações concretas (adapter Redis, store em memória,
//     token bucket local, semáforo), detalhes de infraestrutura
//   - analytics (este pacote): rotas + DTOs + middlewares + tradução de
//     erros para status/payload JSON
//
// Fluxo da ingestão (POST /events):
//
//  1. Middlewares opcionais: gate local por cliente e teto de concorrência
//  2. Decodifica e valida o payload (campos obrigatórios não vazios)
//  3. Consulta o limiter global de admissão (janela de 1s no armazenamento)
//  4. Se admitido, o Processor atualiza presença e agregados
//
// As consultas (GET /metrics/...) falam direto com os casos de uso.
// Variáveis de ambiente do binário (cmd/server) controlam o comportamento,
// como RATE_LIMIT_PER_SEC, ACTIVE_USER_WINDOW_MIN e PAGEVIEW_WINDOW_MIN.
package analytics
