// Package schema normalizes the column headers of loaded spreadsheets to a
// fixed canonical vocabulary so the rest of the engine can address fields by
// one name regardless of which source system exported the file.
package schema

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Canonical field names. Every loaded table except the consolidated
// recordings index is renamed to these before any matching logic runs.
const (
	FieldAccountID         = "account_id"
	FieldName              = "name"
	FieldNationalID        = "national_id"
	FieldEffectiveChannels = "effective_channels"
	FieldPhone             = "phone"
	FieldManagementType    = "management_type"
	FieldCreditNumber      = "credit_number"
	FieldAudioRoute        = "audio_route"
	FieldAudioFilename     = "audio_filename"
)

// fieldOrder fixes match precedence when two fields accept the same raw
// spelling ("nombre_completo" is both a customer-name and an audio-filename
// header in the wild; the customer-name reading wins).
var fieldOrder = []string{
	FieldAccountID,
	FieldName,
	FieldNationalID,
	FieldEffectiveChannels,
	FieldPhone,
	FieldManagementType,
	FieldCreditNumber,
	FieldAudioRoute,
	FieldAudioFilename,
}

// Mapping relates canonical field names to the raw header spellings accepted
// for them. Values are fixed at construction; Normalize never mutates a
// Mapping.
type Mapping struct {
	spellings map[string][]string
}

// DefaultMapping returns the built-in vocabulary: every header spelling the
// known source exports use, plus each canonical name itself so normalizing
// an already-normalized table is a no-op.
func DefaultMapping() Mapping {
	return Mapping{spellings: map[string][]string{
		FieldAccountID: {FieldAccountID, "cuenta", "CUENTA", "Cuenta"},
		FieldName: {FieldName, "nombre", "NOMBRE", "nombres", "NOMBRES", "contacto", "CONTACTO",
			"nombre completo", "NOMBRE COMPLETO", "nombre_completo", "NOMBRE_COMPLETO"},
		FieldNationalID: {FieldNationalID, "dni", "DNI", "documento", "DOCUMENTO", "Dni", "Documento"},
		FieldEffectiveChannels: {FieldEffectiveChannels, "gestion efectiva", "GESTION EFECTIVA",
			"gestión efectiva", "GESTIÓN EFECTIVA", "gestion_efectiva", "GESTION_EFECTIVA"},
		FieldPhone: {FieldPhone, "telefono", "TELEFONO", "teléfono", "TELÉFONO", "celular",
			"CELULAR", "Telefono", "Celular"},
		FieldManagementType: {FieldManagementType, "tipo de gestion", "TIPO DE GESTION",
			"tipo_gestion", "TIPO_GESTION", "tipo de gestión", "TIPO DE GESTIÓN"},
		FieldCreditNumber: {FieldCreditNumber, "numero de credito", "NUMERO DE CREDITO",
			"número de crédito", "NÚMERO DE CRÉDITO", "numero_credito", "NUMERO_CREDITO"},
		FieldAudioRoute:    {FieldAudioRoute, "ruta", "RUTA", "Ruta"},
		FieldAudioFilename: {FieldAudioFilename, "nombre_completo", "NOMBRE_COMPLETO", "nombre completo"},
	}}
}

type mappingFile struct {
	Fields map[string][]string `yaml:"fields"`
}

// LoadMapping reads a YAML overrides file and returns the default mapping
// extended with its spellings. Entries are additive: the built-in vocabulary
// always stays accepted. A canonical field name not in the vocabulary is an
// error.
//
//	fields:
//	  account_id: ["CTA", "nro cuenta"]
//	  phone: ["movil"]
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, eris.Wrapf(err, "schema: read mapping file %s", path)
	}

	var f mappingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Mapping{}, eris.Wrapf(err, "schema: parse mapping file %s", path)
	}

	m := DefaultMapping()
	for field, extra := range f.Fields {
		base, ok := m.spellings[field]
		if !ok {
			return Mapping{}, eris.Errorf("schema: unknown canonical field %q in %s", field, path)
		}
		m.spellings[field] = appendUnique(base, extra)
	}
	return m, nil
}

// Spellings returns a copy of the accepted raw headers for a canonical
// field.
func (m Mapping) Spellings(field string) []string {
	src := m.spellings[field]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func appendUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extra {
		if seen[s] {
			continue
		}
		seen[s] = true
		base = append(base, s)
	}
	return base
}
