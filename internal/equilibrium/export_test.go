package equilibrium

var ExcessAcidHydronium = excessAcidHydronium
