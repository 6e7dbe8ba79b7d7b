package header

// Shared fragments. num covers "Nº", "N°", "N.º", "No", "Número", "Nr.".
const (
	num   = `(?:N\.?\s?[º°o]\.?|N[ÚU]MERO|NR\.?)`
	sep   = `\s*[:\-]?\s*`
	idCap = `(\d{1,6}\s?/\s?\d{4}(?:[ \t]*-[ \t]*(?-i:[A-Z0-9]{1,4})\b)?)`
)

// Ordered strict -> loose. Later patterns only exist for documents that miss the earlier ones.
var identifierRules = newCascade(
	`(?i)ATA\s+DE\s+REGISTRO\s+DE\s+PRE[ÇC]OS\s*`+num+sep+idCap,
	`(?i)`+num+`\s*(?:DA\s+)?ATA`+sep+idCap,
	`(?i)\bARP\s*(?:`+num+`)?`+sep+idCap,
	`(?i)\bATA\s*`+num+sep+idCap,
	`(?i)REGISTRO\s+DE\s+PRE[ÇC]OS\s*(?:`+num+`)?`+sep+idCap,
	`(?i)(?:PREG[ÃA]O|EDITAL|CONCORR[ÊE]NCIA)\s+(?:ELETR[ÔO]NICO\s+|PRESENCIAL\s+|P[ÚU]BLIC[OA]\s+)?(?:`+num+`)?`+sep+idCap,
)

var authorityRules = newCascade(
	`(?i)(?:[ÓO]RG[ÃA]O\s+)?GERENCIADORA?\s*[:\-]\s*([^\n;]{2,150})`,
	`(?i)[ÓO]RG[ÃA]O\s+(?:GESTOR|RESPONS[ÁA]VEL|CONTRATANTE)\s*[:\-]\s*([^\n;]{2,150})`,
	`(?i)\b((?:SECRETARIA|SUPERINTEND[ÊE]NCIA|COMPANHIA|POL[ÍI]CIA)\s+(?:DE\s+ESTADO\s+)?[^\n,;]{3,120})`,
)

var processRules = newCascade(
	`(?i)PROCESSO\s+SEI\s*(?:`+num+`)?`+sep+`(\d[\d./\-]{4,}\d)`,
	`(?i)PROCESSO\s+(?:ADMINISTRATIVO\s+|DE\s+COMPRAS?\s+|LICITAT[ÓO]RIO\s+)?(?:`+num+`)?`+sep+`(\d[\d./\-]{4,}\d)`,
	`(?i)\bPROC\.?\s*(?:`+num+`)?`+sep+`(\d+/\d{4})`,
)

var supplierRule = rule{re: mustCompile(
	`(?i)(?:FORNECEDORA?|EMPRESA|CONTRATADA|DETENTORA|RAZ[ÃA]O\s+SOCIAL)\b\s*[:\-]?\s*([^\n:;]{2,150}?\s(?:LTDA|EIRELI|S\.\s?A|S/A)\.?)(?:[\s,;]|$)`,
)}

var validityRules = newCascade(
	`(?i)(?:VALIDADE|VIG[ÊE]NCIA)\b[^\n.]{0,60}?\b(\d{1,2})\s*(?:\([^)]{0,20}\)\s*)?MESES`,
)

var subjectRules = newCascade(
	`(?i)\bOBJETO\s*[:\-]\s*([^\n]{10,300})`,
)

var (
	reTaxID     = mustCompile(`\b\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}\b`)
	reLegal     = mustCompile(`(?i)\b(?:LEI|DECRETO)(?:\s+(?:FEDERAL|ESTADUAL|MUNICIPAL|COMPLEMENTAR))?\s*(?:` + num + `)?\s*\d[\d.]*(?:/\d{2,4})?(?:,?\s+DE\s+\d{1,2}[º°o]?\s+DE\s+[A-ZÇ]+\s+DE\s+\d{4})?`)
	reDateRange = mustCompile(`(?i)VIG[ÊE]NCIA[^\n]{0,80}?(\d{1,2}/\d{1,2}/\d{4})\s*(?:A|AT[ÉE]|-)\s*(\d{1,2}/\d{1,2}/\d{4})`)
	reSiglaHint = mustCompile(`\(([A-Z]{2,12}(?:-[A-Z]{2})?)\)`)
)
