package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fatymarishu/gatepass/config"
	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/repository"
	apperrors "github.com/fatymarishu/gatepass/pkg/errors"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 筛选条件与管理员列表一致，导出内容即列表所见。
type ExportService interface {
	ExportRequests(ctx context.Context, filter *dto.VisitorRequestFilter) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.VisitConfig
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.VisitConfig, repo *repository.Repository, now Clock, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, now: now, logger: logger}
}

var exportHeaders = []string{
	"追踪码", "姓名", "邮箱", "手机号", "访客类型", "仓库", "时间段", "访问日期",
	"来访目的", "随行人数", "审批状态", "到访状态", "到达时间", "离开时间", "准时情况",
}

// ═══════════════════════════════════════════════════════════
// ExportRequests — 导出访客申请为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "访客申请"
//   - 第 1 行标题（导出日期），第 2 行表头，之后每行一条申请
//   - 时间按业务时区展示
func (s *exportService) ExportRequests(ctx context.Context, filter *dto.VisitorRequestFilter) (*bytes.Buffer, string, error) {
	f, err := parseRequestFilter(filter)
	if err != nil {
		return nil, "", err
	}

	list, err := s.repo.VisitorRequest.List(ctx)
	if err != nil {
		s.logger.Error("导出：查询访客申请失败", zap.Error(err))
		return nil, "", err
	}
	rows := FilterRequests(list, f)
	loc := s.cfg.Location()
	exportDate := s.now().In(loc).Format(dateLayout)

	xf := excelize.NewFile()
	defer xf.Close()

	sheetName := "访客申请"
	idx, _ := xf.NewSheet(sheetName)
	xf.SetActiveSheet(idx)
	xf.DeleteSheet("Sheet1")

	// 列宽
	xf.SetColWidth(sheetName, "A", "A", 14)
	xf.SetColWidth(sheetName, "B", "D", 20)
	xf.SetColWidth(sheetName, "E", "G", 16)
	xf.SetColWidth(sheetName, "H", "H", 12)
	xf.SetColWidth(sheetName, "I", "I", 30)
	xf.SetColWidth(sheetName, "J", "O", 14)

	headerStyle, _ := xf.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	lastCol := colName(len(exportHeaders) - 1)
	xf.SetCellValue(sheetName, "A1", fmt.Sprintf("访客申请导出 %s（共 %d 条）", exportDate, len(rows)))
	xf.MergeCell(sheetName, "A1", cell(lastCol, 1))
	xf.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range exportHeaders {
		xf.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	xf.SetCellStyle(sheetName, "A2", cell(lastCol, 2), headerStyle)

	// 数据行
	for i := range rows {
		r := &rows[i]
		values := []interface{}{
			r.TrackingCode,
			r.Name,
			r.Email,
			r.Phone,
			r.VisitorTypeName,
			r.WarehouseName,
			r.SlotDisplay(),
			r.VisitDate.Format(dateLayout),
			r.Purpose,
			len(r.Accompanying),
			string(r.Status),
			string(r.VisitStatus),
			clockText(r.ArrivedAt, loc),
			clockText(r.CheckedOutAt, loc),
			orDash(string(r.Punctuality)),
		}
		for j, val := range values {
			xf.SetCellValue(sheetName, cell(colName(j), 3+i), val)
		}
	}

	buf := new(bytes.Buffer)
	if err := xf.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", apperrors.Transient("生成 Excel 文件失败", err)
	}

	filename := fmt.Sprintf("visitor_requests_%s.xlsx", exportDate)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func clockText(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("15:04")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
