package domain

// CurrencyCOP is the ISO code of Colombian pesos.
const CurrencyCOP = "COP"
