package config

import "barbearia/backend/internal/domain"

const DefaultTimezone = "America/Sao_Paulo"

func shopWeek() [7]domain.WorkingWindow {
	var week [7]domain.WorkingWindow
	week[0] = domain.ClosedWindow()
	for day := 1; day <= 5; day++ {
		week[day] = domain.OpenWindow(9*60, 19*60)
	}
	week[6] = domain.OpenWindow(8*60, 18*60)
	return week
}

// DefaultCatalog is the catalog served when no catalog file is configured.
func DefaultCatalog() domain.Catalog {
	return domain.Catalog{
		Timezone:            DefaultTimezone,
		GridIntervalMinutes: domain.DefaultGridIntervalMinutes,
		BufferMinutes:       0,
		ContactEmail:        "contato@barbeariacruz.com",
		Barbers: []domain.Barber{
			{
				ID:          "joao",
				Name:        "João Silva",
				Email:       "joao@barbeariacruz.com",
				CalendarID:  "joao@barbeariacruz.com",
				Specialties: []string{"Cortes modernos", "Fades", "Degradê"},
				Hours:       shopWeek(),
			},
			{
				ID:          "pedro",
				Name:        "Pedro Santos",
				Email:       "pedro@barbeariacruz.com",
				CalendarID:  "pedro@barbeariacruz.com",
				Specialties: []string{"Barbas", "Acabamentos", "Tratamentos"},
				Hours:       shopWeek(),
			},
			{
				ID:          "marcos",
				Name:        "Marcos Costa",
				Email:       "marcos@barbeariacruz.com",
				CalendarID:  "marcos@barbeariacruz.com",
				Specialties: []string{"Coloração", "Tratamentos especiais", "Consultoria"},
				Hours:       shopWeek(),
			},
		},
		Services: []domain.Service{
			{ID: "corte", Name: "Corte Masculino", Description: "Cortes modernos e tradicionais com acabamento perfeito", DurationMinutes: 45, PriceMinorUnits: 3500},
			{ID: "barba", Name: "Barba", Description: "Acabamento e modelagem de barba com produtos premium", DurationMinutes: 30, PriceMinorUnits: 2500},
			{ID: "corte-barba", Name: "Corte + Barba", Description: "Corte completo + acabamento da barba", DurationMinutes: 75, PriceMinorUnits: 5000},
			{ID: "coloracao", Name: "Coloração", Description: "Coloração profissional para cabelo e barba", DurationMinutes: 60, PriceMinorUnits: 4000},
		},
	}
}
