package tenant

import "hash/fnv"

// fallbackCompanies are the demo tenants served when no directory record exists.
var fallbackCompanies = map[string]CompanyInfo{
	"app": {
		ID:             1,
		Name:           "Contalink Pro",
		Subdomain:      "app",
		Mode:           ModePro,
		IsActive:       true,
		Tagline:        "Suite contable avanzada",
		PrimaryColor:   "#2563EB",
		SecondaryColor: "#1D4ED8",
		FontFamily:     "Inter, sans-serif",
	},
	"restaurant": {
		ID:             2,
		Name:           "POS Restaurante Demo",
		Subdomain:      "restaurant",
		Mode:           ModePOS,
		IsActive:       true,
		Tagline:        "Punto de venta agil para restaurantes",
		PrimaryColor:   "#F97316",
		SecondaryColor: "#EA580C",
		FontFamily:     "Poppins, sans-serif",
	},
	"retail": {
		ID:             3,
		Name:           "Autoservicio Retail",
		Subdomain:      "retail",
		Mode:           ModeAutopago,
		IsActive:       true,
		Tagline:        "Terminal de autopago para tus clientes",
		PrimaryColor:   "#0EA5E9",
		SecondaryColor: "#0284C7",
		FontFamily:     "Outfit, sans-serif",
	},
}

// syntheticIDBase keeps hashed ids clear of the fixed demo ids.
const syntheticIDBase = 1 << 32

// Fallback returns a synthesized company for key. Known demo keys get their
// fixed record; any other key gets a generic demo company whose id is
// derived from the key, so repeated calls agree.
func Fallback(key string) *CompanyInfo {
	if c, ok := fallbackCompanies[key]; ok {
		c.Synthetic = true
		return &c
	}
	return &CompanyInfo{
		ID:             fallbackID(key),
		Name:           "Demo " + key,
		Subdomain:      key,
		Mode:           ModeEcommerce,
		IsActive:       true,
		PrimaryColor:   "#3B82F6",
		SecondaryColor: "#1E40AF",
		FontFamily:     "Inter, sans-serif",
		Tagline:        "Empresa demostrativa",
		Synthetic:      true,
	}
}

func fallbackID(key string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return syntheticIDBase + int64(h.Sum32())
}
