package notify

import "strconv"

// Message maps an event to the toast title and description shown to the
// user. All user-facing text lives here.
func Message(e Event) (title, description string) {
	switch e.Kind {
	case ServiceAdded:
		return "Serviço adicionado", `"` + e.Subject + `" foi adicionado à lista.`
	case ServiceUpdated:
		return "Serviço atualizado", `"` + e.Subject + `" foi atualizado.`
	case ServiceDeleted:
		return "Serviço deletado", ""
	case ServicesCleared:
		return "Lista limpa", "Os serviços de hoje foram removidos."
	case ServicesImported:
		return "Importação concluída", strconv.Itoa(e.Count) + " serviços foram adicionados ao histórico."
	case CatalogSaved:
		return "Serviços salvos", "A lista de serviços predefinidos foi atualizada."
	case PlanAdded:
		return "Plano adicionado", `Plano para "` + e.Subject + `" foi criado.`
	case PlanUpdated:
		return "Plano atualizado", `Plano de "` + e.Subject + `" foi atualizado.`
	case PlanDeleted:
		return "Plano deletado", ""
	case CreditUsed:
		return "Corte utilizado!", "Um corte foi debitado do plano de " + e.Subject + "."
	case PlanRenewed:
		return "Plano Reiniciado!", "O plano de " + e.Subject + " foi renovado."
	case NoCreditsLeft:
		return "Atenção!", "O plano de " + e.Subject + " não tem cortes restantes."
	case SaveFailed:
		return "Erro ao salvar dados", "Não foi possível salvar as alterações."
	default:
		return string(e.Kind), ""
	}
}
