package classify

import "testing"

func TestClassifyKeywords(t *testing.T) {
	cases := []struct {
		text string
		want DocType
	}{
		{"Declaración MODELO 190 ejercicio 2021", Modelo190},
		{"percepción íntegra del trabajador", Modelo190},
		{"Documento 10T del ejercicio", Doc10T},
		{"rendimiento a integrar en la base", Doc10T},
		{"Relación Nominal de Trabajadores RNT", RNT},
		{"base de contingencias comunes 3.000,00", RNT},
		{"Tipos de cotización aplicables", IDC},
		{"cotización por contingencias profesionales", IDC},
		{"Convenio colectivo: jornada anual de 1.708 horas", Convenio},
		{"texto sin relación con nóminas", Unknown},
		{"", Unknown},
	}
	for _, c := range cases {
		if got := Classify(c.text); got != c.want {
			t.Errorf("Classify(%q) = %s, want %s", c.text, got, c.want)
		}
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// Text matching several rule sets takes the first label in rule order.
	text := "MODELO 190 con base de contingencias comunes y RNT"
	if got := Classify(text); got != Modelo190 {
		t.Errorf("Classify precedence = %s, want %s", got, Modelo190)
	}
	// Convenio requires all three keywords.
	if got := Classify("convenio con jornada reducida"); got != Unknown {
		t.Errorf("Classify partial convenio = %s, want unknown", got)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	text := "documento 10t rendimiento a integrar"
	first := Classify(text)
	for i := 0; i < 5; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("Classify not deterministic: %s vs %s", got, first)
		}
	}
}
