package header

import (
	"strings"

	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

// Authority is a known managing authority. Fragment is matched against upper-case,
// accent-free text.
type Authority struct {
	Fragment string
	Name     string
	Sigla    string
}

// knownAuthorities is consulted in order, more specific fragments first.
var knownAuthorities = []Authority{
	{Fragment: "SEPLAG", Name: "Secretaria de Estado de Planejamento e Gestão", Sigla: "SEPLAG-MG"},
	{Fragment: "PLANEJAMENTO E GESTAO", Name: "Secretaria de Estado de Planejamento e Gestão", Sigla: "SEPLAG-MG"},
	{Fragment: "SEJUSP", Name: "Secretaria de Estado de Justiça e Segurança Pública", Sigla: "SEJUSP-MG"},
	{Fragment: "JUSTICA E SEGURANCA PUBLICA", Name: "Secretaria de Estado de Justiça e Segurança Pública", Sigla: "SEJUSP-MG"},
	{Fragment: "PRODEMGE", Name: "Companhia de Tecnologia da Informação do Estado de Minas Gerais", Sigla: "PRODEMGE"},
	{Fragment: "CORPO DE BOMBEIROS", Name: "Corpo de Bombeiros Militar de Minas Gerais", Sigla: "CBMMG"},
	{Fragment: "CBMMG", Name: "Corpo de Bombeiros Militar de Minas Gerais", Sigla: "CBMMG"},
	{Fragment: "POLICIA MILITAR", Name: "Polícia Militar de Minas Gerais", Sigla: "PMMG"},
	{Fragment: "PMMG", Name: "Polícia Militar de Minas Gerais", Sigla: "PMMG"},
	{Fragment: "POLICIA CIVIL", Name: "Polícia Civil de Minas Gerais", Sigla: "PCMG"},
	{Fragment: "PCMG", Name: "Polícia Civil de Minas Gerais", Sigla: "PCMG"},
}

// LookupAuthority finds the first known authority whose fragment occurs in s.
func LookupAuthority(s string) (Authority, bool) {
	folded := utils.Fold(s)
	for _, a := range knownAuthorities {
		if strings.Contains(folded, a.Fragment) {
			return a, true
		}
	}
	return Authority{}, false
}
