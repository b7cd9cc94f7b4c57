package model

import "errors"

var (
	// ErrDescriptionTooShort indica descrição abaixo do mínimo configurado
	ErrDescriptionTooShort = errors.New("popis projektu je příliš krátký")

	// ErrDescriptionTooLong indica descrição acima do máximo configurado
	ErrDescriptionTooLong = errors.New("popis projektu je příliš dlouhý")

	// ErrInvalidQuizAnswer indica resposta que não pertence ao questionário
	ErrInvalidQuizAnswer = errors.New("neplatná odpověď v dotazníku")

	// ErrUnknownProjectType indica tipo de projeto inexistente
	ErrUnknownProjectType = errors.New("neznámý typ projektu")

	// ErrAnalysisNotFound indica análise não encontrada no histórico
	ErrAnalysisNotFound = errors.New("analýza nebyla nalezena")

	// ErrStoreUnavailable indica falha no armazenamento do histórico
	ErrStoreUnavailable = errors.New("úložiště analýz není dostupné")

	// ErrRateLimited indica excesso de requisições do mesmo cliente
	ErrRateLimited = errors.New("příliš mnoho požadavků, zkuste to později")

	// ErrCanceled indica que a análise foi cancelada antes de terminar
	ErrCanceled = errors.New("analýza byla zrušena")
)
