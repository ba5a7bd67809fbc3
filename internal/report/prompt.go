package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/vivabem/vivabem-server/internal/store"
)

// BuildExtractionPrompt renders the bundle as the structured analysis prompt.
// Instructions and JSON keys are English; the model is told to answer with
// values strictly in Brazilian Portuguese.
func BuildExtractionPrompt(b *Bundle) string {
	var p strings.Builder

	p.WriteString("Act as a personal health and wellness assistant. ")
	p.WriteString("Analyze the following comprehensive daily data and provide a structured wellness report:\n\n")

	p.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&p, "- Name: %s\n", b.User.Name)
	fmt.Fprintf(&p, "- Age: %d\n", ageOn(b.User.BirthDate, b.Day))
	fmt.Fprintf(&p, "- Report Date: %s\n\n", b.Day.Format("2006-01-02"))

	p.WriteString("WELLNESS & MENTAL HEALTH:\n")
	if len(b.Wellness) > 0 {
		for _, w := range b.Wellness {
			fmt.Fprintf(&p, "- Mood: %s", w.Mood)
			if w.Period != "" {
				fmt.Fprintf(&p, " | Period: %s", w.Period)
			}
			if w.Note != "" {
				fmt.Fprintf(&p, " | Notes: %s", w.Note)
			}
			p.WriteString("\n")
		}
	} else {
		p.WriteString("- No wellness data recorded for this date\n")
	}
	p.WriteString("\n")

	p.WriteString("NUTRITIONAL INTAKE:\n")
	if len(b.Nutrition) > 0 {
		for _, n := range b.Nutrition {
			fmt.Fprintf(&p, "- %s | Calories: %.0f | Protein: %.1fg | Carbs: %.1fg | Fat: %.1fg\n",
				n.FoodName, n.Calories, n.Protein, n.Carbs, n.Fat)
		}
	} else {
		p.WriteString("- No nutritional entries recorded for this date\n")
	}
	p.WriteString("\n")

	p.WriteString("PHYSICAL ACTIVITIES:\n")
	if len(b.Activities) > 0 {
		for _, a := range b.Activities {
			fmt.Fprintf(&p, "- %s | Duration: %dmin | Calories Burned: %.0f\n",
				a.ActivityType, a.DurationMinutes, a.CaloriesBurned)
		}
	} else {
		p.WriteString("- No physical activities recorded for this date\n")
	}
	p.WriteString("\n")

	p.WriteString("WALKING SESSIONS:\n")
	if len(b.Walks) > 0 {
		for _, w := range b.Walks {
			fmt.Fprintf(&p, "- Steps: %d | Distance: %.2fkm | Duration: %dmin\n",
				w.Steps, w.DistanceKm, w.DurationMinutes)
		}
	} else {
		p.WriteString("- No walking sessions recorded for this date\n")
	}
	p.WriteString("\n")

	p.WriteString("EXERCISE GOALS:\n")
	if b.Goal != nil {
		fmt.Fprintf(&p, "- Target Steps: %d | Current Steps: %d (%d%%)\n",
			b.Goal.TargetSteps, b.Goal.CurrentSteps, goalPercent(float64(b.Goal.CurrentSteps), float64(b.Goal.TargetSteps)))
		fmt.Fprintf(&p, "- Target Minutes: %d | Current Minutes: %d (%d%%)\n",
			b.Goal.TargetMinutes, b.Goal.CurrentMinutes, goalPercent(float64(b.Goal.CurrentMinutes), float64(b.Goal.TargetMinutes)))
		fmt.Fprintf(&p, "- Target Calories: %.0f | Current Calories: %.0f (%d%%)\n",
			b.Goal.TargetCalories, b.Goal.CurrentCalories, goalPercent(b.Goal.CurrentCalories, b.Goal.TargetCalories))
	} else {
		p.WriteString("- No exercise goals set for this date\n")
	}
	p.WriteString("\n")

	p.WriteString("MEDICATION MANAGEMENT:\n")
	if len(b.Medicines) > 0 {
		for _, m := range b.Medicines {
			fmt.Fprintf(&p, "- %s | Dose: %s\n", m.Name, m.Dose)
		}
	} else {
		p.WriteString("- No medicines prescribed\n")
	}
	if len(b.Tasks) > 0 {
		names := medicineNames(b)
		p.WriteString("Medication Tasks:\n")
		for _, task := range b.Tasks {
			fmt.Fprintf(&p, "- %s | Scheduled: %s | Taken: %s\n",
				names[task.MedicineID], task.ScheduledTime.Format("15:04"), yesNo(task.Taken))
		}
		taken, total := adherence(b.Tasks)
		fmt.Fprintf(&p, "Adherence Rate: %d/%d (%d%%)\n", taken, total, goalPercent(float64(taken), float64(total)))
	}
	p.WriteString("\n")

	p.WriteString("MEDICAL APPOINTMENTS:\n")
	if len(b.Appointments) > 0 {
		for _, a := range b.Appointments {
			fmt.Fprintf(&p, "- %s | Time: %s | Location: %s | Completed: %s\n",
				a.Title, a.Date.Format("15:04"), a.Location, yesNo(a.IsCompleted))
		}
	} else {
		p.WriteString("- No appointments scheduled for this date\n")
	}
	p.WriteString("\n")

	p.WriteString("COGNITIVE & LEISURE ACTIVITIES:\n")
	if len(b.Readings) > 0 {
		p.WriteString("Reading Activities:\n")
		for _, r := range b.Readings {
			fmt.Fprintf(&p, "- Book: %s | Progress: %d/%d | Completed: %s\n",
				r.BookTitle, r.CurrentPage, r.TotalPages, yesNo(r.IsCompleted))
		}
	} else {
		p.WriteString("- No reading activities for this date\n")
	}
	if len(b.Crosswords) > 0 {
		p.WriteString("Crossword Activities:\n")
		for _, c := range b.Crosswords {
			fmt.Fprintf(&p, "- Puzzle: %s | Difficulty: %s | Time Spent: %dmin | Completed: %s\n",
				c.PuzzleName, c.Difficulty, c.TimeSpentMinutes, yesNo(c.IsCompleted))
		}
	} else {
		p.WriteString("- No crossword activities for this date\n")
	}
	if len(b.Movies) > 0 {
		p.WriteString("Movie Activities:\n")
		for _, m := range b.Movies {
			genre := m.Genre
			if genre == "" {
				genre = "Not specified"
			}
			fmt.Fprintf(&p, "- Movie: %s | Genre: %s | Rating: %d/5 | Watched: %s\n",
				m.MovieTitle, genre, m.Rating, yesNo(m.IsWatched))
		}
	} else {
		p.WriteString("- No movie activities for this date\n")
	}
	p.WriteString("\n")

	p.WriteString("ANALYSIS REQUEST:\n")
	p.WriteString("Please provide a comprehensive wellness report including:\n")
	p.WriteString("1. Overall daily assessment and achievements\n")
	p.WriteString("2. Health and wellness patterns observed\n")
	p.WriteString("3. Medication adherence analysis\n")
	p.WriteString("4. Physical activity evaluation\n")
	p.WriteString("5. Nutritional balance assessment\n")
	p.WriteString("6. Mental and cognitive engagement review\n")
	p.WriteString("7. Specific recommendations for improvement\n")
	p.WriteString("8. Motivation and encouragement\n\n")
	p.WriteString("Format the response in structured JSON with these sections: ")
	p.WriteString("overall_assessment, health_metrics_analysis, medication_adherence, ")
	p.WriteString("activity_evaluation, nutrition_analysis, cognitive_insights, ")
	p.WriteString("recommendations, motivational_message")
	p.WriteString("\n\nIMPORTANT: Keep the JSON keys in English, but ensure all values and text content are strictly in Brazilian Portuguese.")

	return p.String()
}

// BuildNarrativePrompt renders the bundle as the caregiver-letter prompt.
// The reply is plain Portuguese prose, ready to be mailed.
func BuildNarrativePrompt(b *Bundle) string {
	var p strings.Builder

	p.WriteString("Você é um assistente de saúde e bem-estar para idosos. ")
	p.WriteString("Sua tarefa é gerar um relatório diário completo e personalizado que será enviado por email.\n\n")

	p.WriteString("=== PERFIL DO USUÁRIO ===\n")
	fmt.Fprintf(&p, "Nome: %s\n", b.User.Name)
	fmt.Fprintf(&p, "Idade: %d anos\n", ageOn(b.User.BirthDate, b.Day))
	fmt.Fprintf(&p, "Data do Relatório: %s\n\n", b.Day.Format("2006-01-02"))

	p.WriteString("=== BEM-ESTAR MENTAL E EMOCIONAL ===\n")
	if len(b.Wellness) > 0 {
		for _, w := range b.Wellness {
			fmt.Fprintf(&p, "Estado de Humor: %s\n", w.Mood)
			if w.Note != "" {
				fmt.Fprintf(&p, "Observações Pessoais: %s\n", w.Note)
			}
		}
	} else {
		p.WriteString("Nenhum registro de bem-estar emocional hoje.\n")
	}
	p.WriteString("\n")

	p.WriteString("=== ALIMENTAÇÃO E NUTRIÇÃO ===\n")
	if len(b.Nutrition) > 0 {
		p.WriteString("Refeições registradas:\n")
		var calories, protein, carbs, fat float64
		for _, n := range b.Nutrition {
			fmt.Fprintf(&p, "  • %s - %.0f kcal (P: %.1fg, C: %.1fg, G: %.1fg)\n",
				n.FoodName, n.Calories, n.Protein, n.Carbs, n.Fat)
			calories += n.Calories
			protein += n.Protein
			carbs += n.Carbs
			fat += n.Fat
		}
		p.WriteString("\nTotal Diário:\n")
		fmt.Fprintf(&p, "  • Calorias: %.0f kcal\n", calories)
		fmt.Fprintf(&p, "  • Proteínas: %.1fg\n", protein)
		fmt.Fprintf(&p, "  • Carboidratos: %.1fg\n", carbs)
		fmt.Fprintf(&p, "  • Gorduras: %.1fg\n", fat)
	} else {
		p.WriteString("Nenhuma refeição registrada hoje.\n")
	}
	p.WriteString("\n")

	p.WriteString("=== ATIVIDADES FÍSICAS ===\n")
	hasExercise := len(b.Activities) > 0 || len(b.Walks) > 0 || b.Goal != nil
	if len(b.Activities) > 0 {
		p.WriteString("Exercícios realizados:\n")
		var minutes int
		var burned float64
		for _, a := range b.Activities {
			fmt.Fprintf(&p, "  • %s - %d minutos (%.0f kcal queimadas)\n",
				a.ActivityType, a.DurationMinutes, a.CaloriesBurned)
			minutes += a.DurationMinutes
			burned += a.CaloriesBurned
		}
		fmt.Fprintf(&p, "Total de exercícios: %d minutos, %.0f kcal queimadas\n\n", minutes, burned)
	}
	if len(b.Walks) > 0 {
		p.WriteString("Caminhadas registradas:\n")
		var steps, minutes int
		var distance float64
		for _, w := range b.Walks {
			fmt.Fprintf(&p, "  • %d passos - %.2f km - %d minutos\n", w.Steps, w.DistanceKm, w.DurationMinutes)
			steps += w.Steps
			distance += w.DistanceKm
			minutes += w.DurationMinutes
		}
		fmt.Fprintf(&p, "Total de caminhadas: %d passos, %.2f km, %d minutos\n\n", steps, distance, minutes)
	}
	if b.Goal != nil {
		p.WriteString("Progresso das Metas:\n")
		fmt.Fprintf(&p, "  • Passos: %d/%d (%d%%)\n",
			b.Goal.CurrentSteps, b.Goal.TargetSteps, goalPercent(float64(b.Goal.CurrentSteps), float64(b.Goal.TargetSteps)))
		fmt.Fprintf(&p, "  • Minutos de Atividade: %d/%d (%d%%)\n",
			b.Goal.CurrentMinutes, b.Goal.TargetMinutes, goalPercent(float64(b.Goal.CurrentMinutes), float64(b.Goal.TargetMinutes)))
		fmt.Fprintf(&p, "  • Calorias Queimadas: %.0f/%.0f (%d%%)\n",
			b.Goal.CurrentCalories, b.Goal.TargetCalories, goalPercent(b.Goal.CurrentCalories, b.Goal.TargetCalories))
	}
	if !hasExercise {
		p.WriteString("Nenhuma atividade física registrada hoje.\n")
	}
	p.WriteString("\n")

	p.WriteString("=== GESTÃO DE MEDICAMENTOS ===\n")
	if len(b.Medicines) > 0 {
		p.WriteString("Medicamentos prescritos:\n")
		for _, m := range b.Medicines {
			fmt.Fprintf(&p, "  • %s - %s\n", m.Name, m.Dose)
		}
		if len(b.Tasks) > 0 {
			names := medicineNames(b)
			p.WriteString("\nAderência do dia:\n")
			for _, task := range b.Tasks {
				status := "NÃO TOMADO"
				if task.Taken {
					status = "TOMADO"
				}
				fmt.Fprintf(&p, "  • %s às %s - %s\n",
					names[task.MedicineID], task.ScheduledTime.Format("15:04"), status)
			}
			taken, total := adherence(b.Tasks)
			fmt.Fprintf(&p, "\nTaxa de Adesão: %d/%d (%d%%)\n", taken, total, goalPercent(float64(taken), float64(total)))
		}
	} else {
		p.WriteString("Nenhum medicamento prescrito.\n")
	}
	p.WriteString("\n")

	p.WriteString("=== CONSULTAS E COMPROMISSOS MÉDICOS ===\n")
	if len(b.Appointments) > 0 {
		for _, a := range b.Appointments {
			status := "Agendada"
			if a.IsCompleted {
				status = "Realizada"
			}
			fmt.Fprintf(&p, "  • %s\n    Horário: %s\n    Local: %s\n    Status: %s\n",
				a.Title, a.Date.Format("15:04"), a.Location, status)
		}
	} else {
		p.WriteString("Nenhuma consulta agendada para hoje.\n")
	}
	p.WriteString("\n")

	p.WriteString("=== ATIVIDADES COGNITIVAS E LAZER ===\n")
	hasLeisure := len(b.Readings) > 0 || len(b.Crosswords) > 0 || len(b.Movies) > 0
	if len(b.Readings) > 0 {
		p.WriteString("Leitura:\n")
		for _, r := range b.Readings {
			status := "em andamento"
			if r.IsCompleted {
				status = "concluído"
			}
			fmt.Fprintf(&p, "  • %s - Página %d de %d (%s)\n", r.BookTitle, r.CurrentPage, r.TotalPages, status)
		}
	}
	if len(b.Crosswords) > 0 {
		p.WriteString("Palavras Cruzadas:\n")
		for _, c := range b.Crosswords {
			status := "em andamento"
			if c.IsCompleted {
				status = "concluído"
			}
			fmt.Fprintf(&p, "  • %s (%s) - %d minutos - %s\n", c.PuzzleName, c.Difficulty, c.TimeSpentMinutes, status)
		}
	}
	if len(b.Movies) > 0 {
		p.WriteString("Filmes:\n")
		for _, m := range b.Movies {
			fmt.Fprintf(&p, "  • %s", m.MovieTitle)
			if m.Genre != "" {
				fmt.Fprintf(&p, " (%s)", m.Genre)
			}
			if m.Rating > 0 {
				fmt.Fprintf(&p, " - Avaliação: %d/5", m.Rating)
			}
			p.WriteString("\n")
		}
	}
	if !hasLeisure {
		p.WriteString("Nenhuma atividade cognitiva ou de lazer registrada hoje.\n")
	}
	p.WriteString("\n")

	p.WriteString("=== INSTRUÇÕES PARA ANÁLISE ===\n")
	p.WriteString("O relatório deve incluir:\n\n")
	p.WriteString("1. SAUDAÇÃO PERSONALIZADA\n   - Cumprimente o usuário pelo nome de forma calorosa\n\n")
	p.WriteString("2. RESUMO EXECUTIVO DO DIA\n   - Uma visão geral dos principais destaques e conquistas do dia\n\n")
	p.WriteString("3. ANÁLISE DETALHADA POR ÁREA\n")
	p.WriteString("   a) Saúde Física e Exercícios\n")
	p.WriteString("   b) Nutrição e Alimentação\n")
	p.WriteString("   c) Bem-estar Mental e Emocional\n")
	p.WriteString("   d) Adesão ao Tratamento Médico\n")
	p.WriteString("   e) Engajamento Cognitivo e Social\n\n")
	p.WriteString("4. RECOMENDAÇÕES PERSONALIZADAS\n   - 3 a 5 recomendações específicas, realistas e acionáveis\n\n")
	p.WriteString("5. MENSAGEM MOTIVACIONAL\n   - Reconheça os esforços e termine com uma nota positiva\n\n")
	p.WriteString("FORMATAÇÃO IMPORTANTE:\n")
	p.WriteString("- Use uma linguagem empática, acolhedora e profissional\n")
	p.WriteString("- Todo o texto deve estar em português brasileiro\n")
	p.WriteString("- Seja específico citando números e dados reais do usuário\n")
	p.WriteString("- Mantenha um tom positivo mesmo ao abordar áreas de melhoria\n\n")
	p.WriteString("RETORNE APENAS O TEXTO DO EMAIL, SEM JSON, SEM MARKDOWN, SEM CÓDIGO.\n")
	p.WriteString("O texto deve estar pronto para ser enviado diretamente por email.")

	return p.String()
}

// adherence counts taken occurrences against the day's total
func adherence(tasks []store.MedicationTask) (taken, total int) {
	for _, task := range tasks {
		if task.Taken {
			taken++
		}
	}
	return taken, len(tasks)
}

// goalPercent is progress toward a target, capped at 100
func goalPercent(current, target float64) int {
	if target <= 0 {
		return 0
	}
	pct := current / target * 100
	if pct > 100 {
		pct = 100
	}
	return int(pct)
}

func medicineNames(b *Bundle) map[string]string {
	names := make(map[string]string, len(b.Medicines))
	for _, m := range b.Medicines {
		names[m.ID] = m.Name
	}
	return names
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}

func ageOn(birth *time.Time, day time.Time) int {
	if birth == nil {
		return 0
	}
	age := day.Year() - birth.Year()
	if day.Month() < birth.Month() || (day.Month() == birth.Month() && day.Day() < birth.Day()) {
		age--
	}
	return age
}
