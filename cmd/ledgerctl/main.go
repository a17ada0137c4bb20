// ledgerctl herramienta de administración del libro de clientes: recálculo, auditoría,
// consulta de movimientos y emisión de tokens de operador.
package main

func main() {
	Execute()
}
