package report

import (
	"strconv"
	"strings"

	"flowbarber/internal/core"
)

// tableHeader is the column line of the tabular report. The import parser
// recognizes it (and the daily report's "Serviços Realizados" line) as the
// start of importable rows.
const tableHeader = "Data Serviço Método Preço"

// FormatDaily renders the shareable plaintext summary of one day's services.
func FormatDaily(date core.Date, services []core.Service) string {
	s := Summarize(services)

	var b strings.Builder
	b.WriteString("*Resumo do Dia - " + date.Format("02/01/2006") + "*\n\n")
	b.WriteString("*Total Geral: R$" + s.Total.Reais() + "*\n")
	b.WriteString("-----------------------------------\n")
	b.WriteString("*Detalhes:*\n")
	b.WriteString("- Dinheiro: R$" + s.Cash.Reais() + "\n")
	b.WriteString("- Pagamento Online: R$" + s.Online.Reais() + "\n\n")
	b.WriteString("*Serviços Realizados: " + strconv.Itoa(s.Count) + "*\n")
	for _, svc := range services {
		b.WriteString("- " + svc.Name + ": R$" + svc.Price.Reais() + " (" + string(svc.PaymentMethod) + ")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTable renders services as the tabular history report, one row per
// service. Parse accepts this text back unchanged.
func FormatTable(services []core.Service) string {
	var b strings.Builder
	b.WriteString(tableHeader + "\n")
	for _, svc := range services {
		b.WriteString(svc.Date.Format("02/01/06") + " " + svc.Name + " " +
			string(svc.PaymentMethod) + " R$" + svc.Price.Reais() + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
