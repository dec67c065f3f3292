package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/docgen/builder"
	"github.com/courseforge/courseforge-backend/internal/docgen/docx"
	"github.com/courseforge/courseforge-backend/internal/docgen/pdf"
	"github.com/courseforge/courseforge-backend/internal/docgen/pptx"
	"github.com/courseforge/courseforge-backend/internal/logger"
	"github.com/courseforge/courseforge-backend/internal/repos"
	"github.com/courseforge/courseforge-backend/internal/types"
)

const (
	DocTypeStudentHandout  = "student-handout"
	DocTypeInstructorGuide = "instructor-guide"
	DocTypeSlideDeck       = "slide-deck"
)

var docTypeExtensions = map[string]string{
	DocTypeStudentHandout:  "pdf",
	DocTypeInstructorGuide: "docx",
	DocTypeSlideDeck:       "pptx",
}

// GenerateRequest names the lesson to generate for and which document
// types to produce. TemplateID is only consulted for slide decks.
type GenerateRequest struct {
	CourseID      uuid.UUID
	LessonID      uuid.UUID
	DocumentTypes []string
	TemplateID    string
}

type DocumentGenerationService interface {
	GenerateDocuments(ctx context.Context, req GenerateRequest) ([]*types.GeneratedDocument, error)
	ListCourseDocuments(ctx context.Context, courseID uuid.UUID) ([]*types.GeneratedDocument, error)
	DownloadDocument(ctx context.Context, docID uuid.UUID) (*types.GeneratedDocument, []byte, error)
	DeleteDocument(ctx context.Context, docID uuid.UUID) error
}

type documentGenerationService struct {
	courseRepo   repos.CourseRepo
	unitRepo     repos.UnitRepo
	lessonRepo   repos.LessonRepo
	compRepo     repos.CompetencyRepo
	activityRepo repos.ActivityRepo
	docRepo      repos.GeneratedDocumentRepo
	storage      DocumentStorage
	templates    TemplateService
	pdfCompiler  *pdf.Compiler
	docxCompiler *docx.Compiler
	pptxCompiler *pptx.Compiler
	log          *logger.Logger
}

func NewDocumentGenerationService(
	courseRepo repos.CourseRepo,
	unitRepo repos.UnitRepo,
	lessonRepo repos.LessonRepo,
	compRepo repos.CompetencyRepo,
	activityRepo repos.ActivityRepo,
	docRepo repos.GeneratedDocumentRepo,
	storage DocumentStorage,
	templates TemplateService,
	baseLog *logger.Logger,
) DocumentGenerationService {
	serviceLog := baseLog.With("service", "DocumentGenerationService")
	return &documentGenerationService{
		courseRepo:   courseRepo,
		unitRepo:     unitRepo,
		lessonRepo:   lessonRepo,
		compRepo:     compRepo,
		activityRepo: activityRepo,
		docRepo:      docRepo,
		storage:      storage,
		templates:    templates,
		pdfCompiler:  pdf.NewCompiler(baseLog),
		docxCompiler: docx.NewCompiler(baseLog),
		pptxCompiler: pptx.NewCompiler(templates.ManifestDiscoverer(), baseLog),
		log:          serviceLog,
	}
}

// GenerateDocuments runs one batch. All requested types are compiled
// before anything is persisted, so a failing type leaves no partial
// files or rows behind.
func (dgs *documentGenerationService) GenerateDocuments(ctx context.Context, req GenerateRequest) ([]*types.GeneratedDocument, error) {
	if len(req.DocumentTypes) == 0 {
		return nil, fmt.Errorf("no document types requested")
	}

	gc, err := dgs.resolveContext(ctx, req.CourseID, req.LessonID)
	if err != nil {
		return nil, err
	}

	type compiled struct {
		docType string
		result  *docgen.Result
	}
	results := make([]compiled, 0, len(req.DocumentTypes))
	for _, docType := range req.DocumentTypes {
		result, err := dgs.compileOne(docType, req.TemplateID, gc)
		if err != nil {
			return nil, &docgen.BatchError{DocumentType: docType, Err: err}
		}
		results = append(results, compiled{docType: docType, result: result})
	}

	now := time.Now().UTC()
	var rows []*types.GeneratedDocument
	var writtenKeys []string
	cleanup := func() {
		for _, key := range writtenKeys {
			if rmErr := dgs.storage.Delete(key); rmErr != nil {
				dgs.log.Warn("cleanup of partial batch failed", "key", key, "error", rmErr)
			}
		}
	}

	for _, c := range results {
		sum := md5.Sum(c.result.Buffer)
		key := fmt.Sprintf("%s/%s/%s-%d.%s",
			req.CourseID, req.LessonID, c.docType, now.UnixMilli(), docTypeExtensions[c.docType])

		if err := dgs.storage.Write(key, c.result.Buffer); err != nil {
			cleanup()
			return nil, fmt.Errorf("persisting %s: %w", c.docType, err)
		}
		writtenKeys = append(writtenKeys, key)

		metadata, err := json.Marshal(c.result.Metadata)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("encoding %s metadata: %w", c.docType, err)
		}
		lessonID := req.LessonID
		rows = append(rows, &types.GeneratedDocument{
			CourseID:     req.CourseID,
			LessonID:     &lessonID,
			UnitID:       gc.lesson.UnitID,
			DocumentType: c.docType,
			Filename:     c.result.Filename,
			StoragePath:  key,
			FileSize:     int64(len(c.result.Buffer)),
			Checksum:     hex.EncodeToString(sum[:]),
			Metadata:     datatypes.JSON(metadata),
			GeneratedAt:  now,
		})
	}

	created, err := dgs.docRepo.Create(ctx, nil, rows)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("recording generated documents: %w", err)
	}

	dgs.log.Info("document batch generated",
		"course_id", req.CourseID,
		"lesson_id", req.LessonID,
		"documents", len(created))
	return created, nil
}

// generationContext is the resolved per-batch input, converted once to
// the docgen input contract.
type generationContext struct {
	lesson       *types.Lesson
	course       docgen.CourseData
	lessonData   docgen.LessonData
	competencies []docgen.CompetencyData
	activities   []docgen.ActivityData
}

func (dgs *documentGenerationService) resolveContext(ctx context.Context, courseID, lessonID uuid.UUID) (*generationContext, error) {
	course, err := dgs.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("loading course %s: %w", courseID, err)
	}
	lesson, err := dgs.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("loading lesson %s: %w", lessonID, err)
	}
	if lesson.CourseID != courseID {
		return nil, fmt.Errorf("lesson %s does not belong to course %s", lessonID, courseID)
	}
	if lesson.UnitID != nil {
		unit, err := dgs.unitRepo.GetByID(ctx, nil, *lesson.UnitID)
		if err != nil {
			return nil, fmt.Errorf("loading unit %s: %w", *lesson.UnitID, err)
		}
		if unit.CourseID != courseID {
			return nil, fmt.Errorf("unit %s does not belong to course %s", unit.ID, courseID)
		}
	}
	competencies, err := dgs.compRepo.GetByCourseID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("loading competencies: %w", err)
	}
	activities, err := dgs.activityRepo.GetByLessonID(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	gc := &generationContext{
		lesson: lesson,
		course: docgen.CourseData{
			ID:          course.ID.String(),
			Title:       course.Title,
			Description: course.Description,
		},
		lessonData: docgen.LessonData{
			ID:          lesson.ID.String(),
			Title:       lesson.Title,
			Description: lesson.Description,
			Content: docgen.ContentData{
				Type: lesson.ContentType,
				Body: lesson.ContentBody,
			},
		},
	}
	for _, comp := range competencies {
		gc.competencies = append(gc.competencies, docgen.CompetencyData{
			ID:          comp.ID.String(),
			Code:        comp.Code,
			Title:       comp.Title,
			Description: comp.Description,
		})
	}
	for _, act := range activities {
		gc.activities = append(gc.activities, docgen.ActivityData{
			ID:           act.ID.String(),
			Type:         act.Type,
			Title:        act.Title,
			Instructions: act.Instructions,
		})
	}
	return gc, nil
}

func (dgs *documentGenerationService) compileOne(docType, templateID string, gc *generationContext) (*docgen.Result, error) {
	switch docType {
	case DocTypeStudentHandout:
		return dgs.pdfCompiler.Generate(builder.StudentHandout(gc.course, gc.lessonData, gc.competencies, gc.activities))
	case DocTypeInstructorGuide:
		return dgs.docxCompiler.Generate(builder.InstructorGuide(gc.course, gc.lessonData, gc.competencies, gc.activities))
	case DocTypeSlideDeck:
		templateBytes, err := dgs.templates.TemplateBytes(templateID)
		if err != nil {
			return nil, err
		}
		slides := builder.SlideDeck(gc.course, gc.lessonData, gc.competencies, gc.activities)
		return dgs.pptxCompiler.Generate(templateID, templateBytes, gc.lessonData.Title, slides)
	default:
		return nil, fmt.Errorf("unknown document type %q", docType)
	}
}

func (dgs *documentGenerationService) ListCourseDocuments(ctx context.Context, courseID uuid.UUID) ([]*types.GeneratedDocument, error) {
	return dgs.docRepo.GetByCourseID(ctx, nil, courseID)
}

func (dgs *documentGenerationService) DownloadDocument(ctx context.Context, docID uuid.UUID) (*types.GeneratedDocument, []byte, error) {
	doc, err := dgs.docRepo.GetByID(ctx, nil, docID)
	if err != nil {
		return nil, nil, err
	}
	data, err := dgs.storage.Read(doc.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

// DeleteDocument removes the stored file first, then the row. A row
// pointing at a missing file is worse than an orphan file, so the row
// only goes once the file is gone.
func (dgs *documentGenerationService) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	doc, err := dgs.docRepo.GetByID(ctx, nil, docID)
	if err != nil {
		return err
	}
	if err := dgs.storage.Delete(doc.StoragePath); err != nil {
		return err
	}
	return dgs.docRepo.Delete(ctx, nil, docID)
}
